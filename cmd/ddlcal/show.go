package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ddlcal/internal/calendar"
	"ddlcal/internal/complete"
	"ddlcal/internal/config"
	"ddlcal/internal/feed"
	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"
	"ddlcal/internal/term"
	"ddlcal/internal/tui"
)

var showOpts struct {
	configPath  string
	events      string
	view        string
	date        string
	detail      string
	event       string
	width       int
	interactive bool
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a calendar view to the terminal",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	f := showCmd.Flags()
	addConfigFlag(f, &showOpts.configPath, "")
	f.StringVar(&showOpts.events, "events", "", "Read deadlines from this JSON file instead of the configured feeds")
	f.StringVar(&showOpts.view, "view", string(calendar.ViewMonth), "View mode: month, week or day")
	f.StringVar(&showOpts.date, "date", "", "Date to show (YYYY-MM-DD); today when empty")
	f.StringVar(&showOpts.detail, "detail", "", "Also print the deadlines of this date (YYYY-MM-DD)")
	f.StringVar(&showOpts.event, "event", "", "With --detail, print only this deadline")
	f.IntVar(&showOpts.width, "width", 0, "Output width; terminal width when 0")
	f.BoolVarP(&showOpts.interactive, "interactive", "i", false, "Browse the calendar with the keyboard")
}

func runShow(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig(showOpts.configPath)
	if err != nil {
		return err
	}
	loc := conf.Location()

	view, ok := calendar.ParseViewMode(showOpts.view)
	if !ok {
		return fmt.Errorf("unknown view %q (want month, week or day)", showOpts.view)
	}

	if showOpts.interactive {
		return runInteractive(conf, loc, view)
	}

	var events []model.Deadline
	if showOpts.events != "" {
		events, err = feed.LoadJSONFile(showOpts.events, loc)
		if err != nil {
			return err
		}
	} else {
		events, err = feed.NewLoader(conf.Feed, loc, nil).Load(cmd.Context())
		if err != nil {
			appLog.Warn("some deadline sources failed", "err", err)
		}
	}

	cal := calendar.New(events, calendar.Options{Location: loc, WeekStart: conf.Weekday()})
	cur := cal.NewCursor().WithView(view)
	if showOpts.date != "" {
		d, err := calendar.ParseDate(showOpts.date, loc)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", showOpts.date, err)
		}
		cur = cal.CursorAt(d, view)
	}

	width := showOpts.width
	if width <= 0 {
		width = term.Width()
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, term.RenderView(cal.Render(cur), width))

	if showOpts.detail != "" {
		d, err := calendar.ParseDate(showOpts.detail, loc)
		if err != nil {
			return fmt.Errorf("invalid --detail %q: %w", showOpts.detail, err)
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, term.RenderOverlay(cal.Detail(d, model.ID(showOpts.event)), width))
	}
	return nil
}

func runInteractive(conf *config.Config, loc *time.Location, view calendar.ViewMode) error {
	opts := tui.Options{
		Location:  loc,
		WeekStart: conf.Weekday(),
		View:      view,
	}
	if showOpts.events != "" {
		path := showOpts.events
		opts.Load = func(context.Context) ([]model.Deadline, error) {
			return feed.LoadJSONFile(path, loc)
		}
	} else {
		opts.Load = feed.NewLoader(conf.Feed, loc, nil).Load
	}
	if conf.Completion.BaseURL != "" {
		opts.Completer = complete.NewFormClient(conf.Completion.BaseURL, conf.Completion.CSRFToken, nil)
	}
	return tui.Run(opts)
}
