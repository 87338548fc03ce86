package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cptspacemanspiff/batstat/internal/config"
	"github.com/cptspacemanspiff/batstat/internal/logging"
)

var (
	configPath = "/etc/batstat/config.toml"
	logTopics  = ""
	verbose    = false
)

func newLogger() *slog.Logger {
	return logging.New(os.Stderr, logging.ParseTopics(logTopics, verbose))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	return cfg, nil
}

func handleCmdError(w io.Writer, err error) {
	if errors.Is(err, fs.ErrPermission) {
		fmt.Fprintln(w, "\nError: Permission Denied")
		fmt.Fprintln(w, "  - Check that the power-supply directory and config file are readable")
	} else if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(w, "\nError: file or directory not found")
		fmt.Fprintln(w, "  - Check [sysfs] root in the config file and that every BAT* device has a uevent file")
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "batstat",
		Short:        "Report the combined charge level of all batteries",
		Long:         `batstat reads battery state from the kernel power-supply class and combines every battery into one percentage.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "path to the TOML config file (defaults are used when missing)")
	cmd.PersistentFlags().StringVar(&logTopics, "log", logTopics, "comma-separated log topics: battery,dbus,wake,metrics (or 'all')")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "enable all verbose logging (equivalent to --log=all)")

	cmd.AddCommand(
		NewStatusCommand(),
		NewDaemonCommand(),
		NewConfigCommand(),
	)

	return cmd
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(os.Stderr, err)
		os.Exit(1)
	}
}
