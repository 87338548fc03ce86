package powersupply

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ChargingState is the charging state reported by a battery driver.
type ChargingState int

const (
	Discharging ChargingState = iota
	Charging
	NotCharging
)

var chargingStates = map[string]ChargingState{
	"Not charging": NotCharging,
	"Discharging":  Discharging,
	"Charging":     Charging,
}

func (s ChargingState) String() string {
	switch s {
	case Discharging:
		return "Discharging"
	case Charging:
		return "Charging"
	case NotCharging:
		return "Not charging"
	}
	return "Unknown"
}

// MarshalText encodes the state using the kernel's vocabulary.
func (s ChargingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseChargingState maps a POWER_SUPPLY_STATUS value to a ChargingState.
// Values outside the fixed vocabulary ("Full", "Unknown", ...) report false.
func ParseChargingState(value string) (ChargingState, bool) {
	s, ok := chargingStates[value]
	return s, ok
}

// BatteryRecord is one fully parsed battery. Energy values are in whatever
// unit the driver reports (usually µWh); only their ratio is meaningful.
type BatteryRecord struct {
	Charging   ChargingState `json:"charging"`
	EnergyFull uint64        `json:"energy_full"`
	EnergyNow  uint64        `json:"energy_now"`
}

const (
	keyStatus     = "POWER_SUPPLY_STATUS"
	keyEnergyFull = "POWER_SUPPLY_ENERGY_FULL"
	keyEnergyNow  = "POWER_SUPPLY_ENERGY_NOW"
)

// recordBuilder collects fields as they are seen. A nil field was never
// parsed successfully.
type recordBuilder struct {
	charging   *ChargingState
	energyFull *uint64
	energyNow  *uint64
}

func (b *recordBuilder) set(key, value string) {
	switch key {
	case keyStatus:
		if s, ok := ParseChargingState(value); ok {
			b.charging = &s
		}
	case keyEnergyFull:
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			b.energyFull = &n
		}
	case keyEnergyNow:
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			b.energyNow = &n
		}
	}
}

func (b *recordBuilder) build() (BatteryRecord, bool) {
	if b.charging == nil || b.energyFull == nil || b.energyNow == nil {
		return BatteryRecord{}, false
	}
	return BatteryRecord{
		Charging:   *b.charging,
		EnergyFull: *b.energyFull,
		EnergyNow:  *b.energyNow,
	}, true
}

// ParseUevent reads KEY=VALUE lines from a uevent stream and returns a
// record only when status, energy_full and energy_now were all parsed.
// Lines without exactly one "=" and unknown keys are ignored. For a
// repeated key the last valid value wins; invalid values never clear an
// earlier valid one. A read error mid-stream drops the record.
func ParseUevent(r io.Reader) (BatteryRecord, bool) {
	var b recordBuilder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "=")
		if len(fields) != 2 {
			continue
		}
		b.set(fields[0], fields[1])
	}
	if scanner.Err() != nil {
		return BatteryRecord{}, false
	}
	return b.build()
}
