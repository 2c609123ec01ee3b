package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ddlcal/internal/capture"
	"ddlcal/internal/complete"
	"ddlcal/internal/feed"
	appLog "ddlcal/internal/log"
	"ddlcal/internal/web"
)

var serveOpts struct {
	configPath string
	listen     string
	debug      bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	addConfigFlag(serveCmd.Flags(), &serveOpts.configPath, "./config.yaml")
	serveCmd.Flags().StringVar(&serveOpts.listen, "listen", "", "HTTP listen address (overrides config if set)")
	serveCmd.Flags().BoolVar(&serveOpts.debug, "debug", false, "Debug logging and ./cache preview")
}

func runServe(cmd *cobra.Command, _ []string) error {
	appLog.Info("ddlcal starting", "version", version)

	conf, err := loadConfig(serveOpts.configPath)
	if err != nil {
		return err
	}
	if serveOpts.listen != "" {
		conf.Listen = serveOpts.listen
	}
	if serveOpts.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	loc := conf.Location()
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"week_start", conf.WeekStart,
		"json", conf.Feed.JSON,
		"sqlite", conf.Feed.SQLite,
		"ics_count", len(conf.Feed.ICS),
		"completion", conf.Completion.BaseURL != "",
		"capture_cron", conf.Capture.Cron,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := feed.NewLoader(conf.Feed, loc, nil)
	opts := web.Options{
		Debug: serveOpts.debug,
		Load:  loader.Load,
	}
	if conf.Completion.BaseURL != "" {
		opts.Completer = complete.NewFormClient(conf.Completion.BaseURL, conf.Completion.CSRFToken, nil)
	}
	srv := web.NewServer(conf, opts)

	if conf.Capture.Cron != "" {
		sched, err := capture.ScheduleCapture(ctx, conf.Capture.Cron, loc, capture.OptionsFromConfig(conf))
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), capture.DefaultTimeoutSec*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	if err := srv.Run(ctx); err != nil {
		appLog.Error("http server failed", err)
		return err
	}
	appLog.Info("ddlcal exiting")
	return nil
}
