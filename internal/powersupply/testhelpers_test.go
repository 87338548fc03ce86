package powersupply

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func uevent(lines ...string) string {
	return strings.Join(append(lines, ""), "\n")
}

func writeBattery(t *testing.T, root, name, status, full, now string) {
	t.Helper()

	writeTestFile(t, filepath.Join(root, name, "uevent"), uevent(
		"POWER_SUPPLY_NAME="+name,
		"POWER_SUPPLY_TYPE=Battery",
		"POWER_SUPPLY_STATUS="+status,
		"POWER_SUPPLY_PRESENT=1",
		"POWER_SUPPLY_ENERGY_FULL_DESIGN=57000000",
		"POWER_SUPPLY_ENERGY_FULL="+full,
		"POWER_SUPPLY_ENERGY_NOW="+now,
		"POWER_SUPPLY_CAPACITY=61",
	))
}
