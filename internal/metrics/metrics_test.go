package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cptspacemanspiff/batstat/internal/powersupply"
)

func TestSetStatus_Known(t *testing.T) {
	SetStatus(&powersupply.Status{Batteries: []powersupply.BatteryRecord{
		{Charging: powersupply.Discharging, EnergyFull: 50, EnergyNow: 25},
		{Charging: powersupply.Discharging, EnergyFull: 50, EnergyNow: 50},
	}})

	if v := testutil.ToFloat64(BatteryPercent); v != 75 {
		t.Errorf("BatteryPercent = %v, want 75", v)
	}
	if v := testutil.ToFloat64(BatteryKnown); v != 1 {
		t.Errorf("BatteryKnown = %v, want 1", v)
	}
	if v := testutil.ToFloat64(Batteries); v != 2 {
		t.Errorf("Batteries = %v, want 2", v)
	}
}

func TestSetStatus_Unknown(t *testing.T) {
	SetStatus(&powersupply.Status{})

	if v := testutil.ToFloat64(BatteryKnown); v != 0 {
		t.Errorf("BatteryKnown = %v, want 0", v)
	}
	if v := testutil.ToFloat64(Batteries); v != 0 {
		t.Errorf("Batteries = %v, want 0", v)
	}
}

func TestObserveRefresh_ErrorKeepsGauges(t *testing.T) {
	SetStatus(&powersupply.Status{Batteries: []powersupply.BatteryRecord{
		{Charging: powersupply.Charging, EnergyFull: 100, EnergyNow: 40},
	}})

	initialTotal := testutil.ToFloat64(RefreshTotal)
	initialErrors := testutil.ToFloat64(RefreshErrors)

	ObserveRefresh(nil, errors.New("list power supplies: no such file or directory"), 2*time.Millisecond)

	if v := testutil.ToFloat64(RefreshTotal); v != initialTotal+1 {
		t.Errorf("RefreshTotal = %v, want %v", v, initialTotal+1)
	}
	if v := testutil.ToFloat64(RefreshErrors); v != initialErrors+1 {
		t.Errorf("RefreshErrors = %v, want %v", v, initialErrors+1)
	}
	if v := testutil.ToFloat64(BatteryPercent); v != 40 {
		t.Errorf("BatteryPercent = %v, want 40 from last good status", v)
	}
}

func TestObserveRefresh_Success(t *testing.T) {
	initialErrors := testutil.ToFloat64(RefreshErrors)

	ObserveRefresh(&powersupply.Status{Batteries: []powersupply.BatteryRecord{
		{Charging: powersupply.NotCharging, EnergyFull: 50, EnergyNow: 60},
	}}, nil, time.Millisecond)

	if v := testutil.ToFloat64(BatteryPercent); v != 120 {
		t.Errorf("BatteryPercent = %v, want 120", v)
	}
	if v := testutil.ToFloat64(RefreshErrors); v != initialErrors {
		t.Errorf("RefreshErrors = %v, want unchanged %v", v, initialErrors)
	}
}
