package powersupply

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultRoot is the kernel power-supply device-class directory.
const DefaultRoot = "/sys/class/power_supply"

const (
	batteryPrefix = "BAT"
	ueventName    = "uevent"
)

// BatteryUeventPaths lists root and returns the uevent path of every entry
// whose name starts with "BAT", in directory listing order. AC adapters and
// other supply types are skipped silently. A listing failure is returned.
func BatteryUeventPaths(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list power supplies: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if !utf8.ValidString(name) || !strings.HasPrefix(name, batteryPrefix) {
			continue
		}
		paths = append(paths, filepath.Join(root, name, ueventName))
	}
	return paths, nil
}
