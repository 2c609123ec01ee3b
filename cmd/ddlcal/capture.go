package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ddlcal/internal/capture"
	appLog "ddlcal/internal/log"
)

var captureOpts struct {
	configPath string
	url        string
	out        string
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save a PNG snapshot of a running calendar page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, err := loadConfig(captureOpts.configPath)
		if err != nil {
			return err
		}
		opts := capture.OptionsFromConfig(conf)
		if captureOpts.url != "" {
			opts.URL = captureOpts.url
		}
		if captureOpts.out != "" {
			opts.OutputPath = captureOpts.out
		}
		if err := capture.CaptureCalendarPNG(cmd.Context(), opts); err != nil {
			return err
		}
		appLog.Info("capture written", "url", opts.URL, "output", opts.OutputPath)
		fmt.Fprintln(cmd.OutOrStdout(), opts.OutputPath)
		return nil
	},
}

func init() {
	addConfigFlag(captureCmd.Flags(), &captureOpts.configPath, "")
	captureCmd.Flags().StringVar(&captureOpts.url, "url", "", "Page to capture (defaults to the configured server's /calendar)")
	captureCmd.Flags().StringVar(&captureOpts.out, "out", "", "Output PNG path (defaults to capture.output)")
}
