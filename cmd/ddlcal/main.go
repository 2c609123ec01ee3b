// Package main implements the ddlcal CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ddlcal/internal/config"
	appLog "ddlcal/internal/log"
)

const version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "ddlcal",
	Short:        "Month, week and day calendar views of deadlines",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, showCmd, captureCmd, completeCmd)
}

// loadConfig reads path, or returns defaults when path is empty. The
// configured log level is applied either way.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			appLog.Error("failed to load config", err, "config_path", path)
			return nil, err
		}
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// addConfigFlag registers --config on fs. An empty default means built-in
// defaults are used and no file is written.
func addConfigFlag(fs *pflag.FlagSet, target *string, def string) {
	usage := "Path to config file (.yaml or .toml)"
	if def == "" {
		usage += "; defaults are used when empty"
	}
	fs.StringVarP(target, "config", "c", def, usage)
}
