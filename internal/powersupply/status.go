// Package powersupply reads battery state from the kernel power-supply
// class in sysfs and combines all batteries into a single reading.
package powersupply

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"os"
)

// Status is the set of valid batteries found by one full scan. It is never
// modified after Read returns it.
type Status struct {
	Batteries []BatteryRecord
}

// Read scans root and parses every battery's uevent file. Listing root or
// opening a uevent file is a hard failure; a device with unusable content
// is left out of the result.
func Read(root string) (*Status, error) {
	paths, err := BatteryUeventPaths(root)
	if err != nil {
		return nil, err
	}

	s := &Status{}
	for _, path := range paths {
		rec, ok, err := readBattery(path)
		if err != nil {
			return nil, err
		}
		if ok {
			s.Batteries = append(s.Batteries, rec)
		}
	}
	return s, nil
}

func readBattery(path string) (BatteryRecord, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return BatteryRecord{}, false, fmt.Errorf("open uevent: %w", err)
	}
	defer f.Close()

	rec, ok := ParseUevent(f)
	return rec, ok, nil
}

// Percent returns floor(100 * sum(now) / sum(full)) over all batteries.
// It reports false when the total full capacity is zero, which covers both
// "no battery" and "capacity unknown". The value is not clamped, so a
// battery reporting more than its full capacity yields more than 100.
func (s *Status) Percent() (uint64, bool) {
	now, full := new(big.Int), new(big.Int)
	for _, b := range s.Batteries {
		now.Add(now, new(big.Int).SetUint64(b.EnergyNow))
		full.Add(full, new(big.Int).SetUint64(b.EnergyFull))
	}
	if full.Sign() == 0 {
		return 0, false
	}

	pct := now.Mul(now, big.NewInt(100))
	pct.Quo(pct, full)
	if !pct.IsUint64() {
		return math.MaxUint64, true
	}
	return pct.Uint64(), true
}

// State combines the per-battery charging states. Any charging battery makes
// the whole set Charging; otherwise any discharging battery makes it
// Discharging. It reports false when there are no batteries.
func (s *Status) State() (ChargingState, bool) {
	if len(s.Batteries) == 0 {
		return 0, false
	}
	state := NotCharging
	for _, b := range s.Batteries {
		switch b.Charging {
		case Charging:
			return Charging, true
		case Discharging:
			state = Discharging
		}
	}
	return state, true
}

func (s *Status) String() string {
	pct, ok := s.Percent()
	if !ok {
		return "No battery detected"
	}
	return fmt.Sprintf("Battery: %d%%", pct)
}

// MarshalJSON encodes the combined reading along with the records. Unknown
// percent and state are encoded as null.
func (s *Status) MarshalJSON() ([]byte, error) {
	out := struct {
		Percent   *uint64         `json:"percent"`
		State     *ChargingState  `json:"state"`
		Batteries []BatteryRecord `json:"batteries"`
	}{
		Batteries: s.Batteries,
	}
	if pct, ok := s.Percent(); ok {
		out.Percent = &pct
	}
	if state, ok := s.State(); ok {
		out.State = &state
	}
	if out.Batteries == nil {
		out.Batteries = []BatteryRecord{}
	}
	return json.Marshal(out)
}
