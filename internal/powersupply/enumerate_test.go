package powersupply

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

func TestBatteryUeventPaths_FiltersNonBatteries(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "BAT0/uevent"), uevent("POWER_SUPPLY_STATUS=Charging"))
	writeTestFile(t, filepath.Join(root, "BAT1/uevent"), uevent("POWER_SUPPLY_STATUS=Charging"))
	writeTestFile(t, filepath.Join(root, "AC/uevent"), uevent("POWER_SUPPLY_ONLINE=1"))
	writeTestFile(t, filepath.Join(root, "ucsi-source-psy-USBC000:001/uevent"), uevent("POWER_SUPPLY_ONLINE=0"))
	writeTestFile(t, filepath.Join(root, "hidpp_battery_0/uevent"), uevent("POWER_SUPPLY_STATUS=Discharging"))

	paths, err := BatteryUeventPaths(root)
	if err != nil {
		t.Fatalf("BatteryUeventPaths() error = %v", err)
	}

	sort.Strings(paths)
	want := []string{
		filepath.Join(root, "BAT0", "uevent"),
		filepath.Join(root, "BAT1", "uevent"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestBatteryUeventPaths_EmptyRoot(t *testing.T) {
	paths, err := BatteryUeventPaths(t.TempDir())
	if err != nil {
		t.Fatalf("BatteryUeventPaths() error = %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("paths = %v, want none", paths)
	}
}

func TestBatteryUeventPaths_MissingRoot(t *testing.T) {
	_, err := BatteryUeventPaths(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("BatteryUeventPaths() error = nil, want listing error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("BatteryUeventPaths() error = %v, want not-exist error", err)
	}
}

func TestBatteryUeventPaths_SkipsInvalidUTF8Names(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("arbitrary byte file names need a Linux filesystem")
	}

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "BAT\xff"), 0o755); err != nil {
		t.Skipf("filesystem rejects non-UTF-8 names: %v", err)
	}

	paths, err := BatteryUeventPaths(root)
	if err != nil {
		t.Fatalf("BatteryUeventPaths() error = %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("paths = %v, want none", paths)
	}
}
