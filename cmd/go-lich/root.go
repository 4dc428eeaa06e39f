package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/messages"
)

// app carries the state shared by every subcommand once the root
// pre-run hook has loaded settings and the message catalog.
type app struct {
	debug      bool
	configPath string

	settings config.Settings
	msgs     *messages.Catalog
	clock    engine.Clock

	logCloser io.Closer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "go-lich",
		Short: "Can Chi dates, lunar calendar and zodiac compatibility advisories",
		Long: `go-lich converts Gregorian dates into sexagenary (Can Chi) labels and an
approximate lunar date, lists the auspicious hours of a day and scores the
zodiac compatibility between a birth year and a target day.

The serve command publishes a rolling iCalendar feed and a JSON API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Name())
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().StringVar(&a.configPath, config.FlagConfig, "", config.FlagDescConfig)

	root.AddCommand(
		newDayCmd(a),
		newMonthCmd(a),
		newCheckCmd(a),
		newHoursCmd(a),
		newServeCmd(a),
		newPasswordCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup configures logging, then loads settings and the message catalog.
func (a *app) setup(command string) error {
	a.close()
	a.logCloser = setupLogging(a.debug, targetFor(command, a.debug))

	path := a.configPath
	if path == "" {
		p, err := config.DefaultSettingsPath()
		if err != nil {
			slog.Warn(config.ErrConfigDir,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
		path = p
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		return err
	}
	a.settings = s

	msgs, err := messages.New()
	if err != nil {
		return err
	}
	a.msgs = msgs

	if a.clock == nil {
		a.clock = engine.RealClock{}
	}
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}
