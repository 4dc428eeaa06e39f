package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/server"
	"golang.org/x/sync/errgroup"
)

const cmdServe = "serve"

// dayFlags are shared by day and check.
type dayFlags struct {
	date    string
	birth   int
	purpose string
	json    bool
}

func (f *dayFlags) register(cmd *cobra.Command, withPurpose bool) {
	cmd.Flags().StringVar(&f.date, config.FlagDate, "", config.FlagDescDate)
	cmd.Flags().IntVar(&f.birth, config.FlagBirth, 0, config.FlagDescBirth)
	if withPurpose {
		cmd.Flags().StringVar(&f.purpose, config.FlagPurpose, "", config.FlagDescPurpose)
	}
	cmd.Flags().BoolVar(&f.json, config.FlagJSON, false, config.FlagDescJSON)
}

// resolve applies settings defaults and validates the flags.
func (f *dayFlags) resolve(a *app) (lich.Date, int, string, error) {
	target := engine.Today(a.clock)
	if f.date != "" {
		d, err := lich.ParseDate(f.date)
		if err != nil {
			return lich.Date{}, 0, "", err
		}
		target = d
	}

	birth := f.birth
	if birth == 0 {
		birth = a.settings.BirthYear
	}
	if birth < config.MinBirthYear || birth > config.MaxBirthYear {
		return lich.Date{}, 0, "", fmt.Errorf("%s: %d", config.ErrInvalidBirth, birth)
	}

	purpose := f.purpose
	if purpose == "" {
		purpose = a.settings.Purpose
	}
	if !config.IsPurpose(purpose) {
		return lich.Date{}, 0, "", fmt.Errorf("%s: %q", config.ErrInvalidPurpose, purpose)
	}
	return target, birth, purpose, nil
}

func newDayCmd(a *app) *cobra.Command {
	var f dayFlags
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the Can Chi labels, lunar date, hours and advice of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, birth, purpose, err := f.resolve(a)
			if err != nil {
				return err
			}
			report := engine.BuildDay(target, birth, purpose, a.msgs)
			if f.json {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return renderDay(cmd.OutOrStdout(), report, a.msgs)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var f dayFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Score the compatibility of a birth year with a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, birth, _, err := f.resolve(a)
			if err != nil {
				return err
			}
			compat := lich.CheckAgeCompatibility(birth, target)
			resp := server.CompatResponse{
				Date:          target,
				BirthYear:     birth,
				Compatibility: compat,
				Band:          lich.BandOf(compat.Score),
			}
			if f.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return renderCompat(cmd.OutOrStdout(), resp, a.msgs)
		},
	}
	f.register(cmd, false)
	return cmd
}

func newMonthCmd(a *app) *cobra.Command {
	var (
		year, month int
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print a Monday-first month grid with lunar dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := engine.Today(a.clock)
			if year == 0 {
				year = today.Year
			}
			if month == 0 {
				month = today.Month
			}
			grid, err := engine.BuildMonth(year, month, today)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), grid)
			}
			return renderMonth(cmd.OutOrStdout(), grid)
		},
	}
	cmd.Flags().IntVar(&year, config.FlagYear, 0, config.FlagDescYear)
	cmd.Flags().IntVar(&month, config.FlagMonth, 0, config.FlagDescMonth)
	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	return cmd
}

func newHoursCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "hours <chi>",
		Short: "List the auspicious hours of a day branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chi, err := lich.ParseChi(args[0])
			if err != nil {
				return err
			}
			resp := server.HoursResponse{
				Branch:      chi,
				HoangDaoDay: lich.IsHoangDaoDay(chi),
				Hours:       lich.AuspiciousHours(chi),
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return renderHours(cmd.OutOrStdout(), resp, a.msgs)
		},
	}
	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   cmdServe,
		Short: "Serve the iCalendar feed and the JSON API on localhost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings
			if port != 0 {
				if port < config.MinPort || port > config.MaxPort {
					return fmt.Errorf("%s: %d", config.ErrInvalidPort, port)
				}
				s.Port = port
			}
			logStartupInfo(s)

			srv := server.NewCalendarServer(strconv.Itoa(s.Port))
			srv.BirthYear = s.BirthYear
			srv.Purpose = s.Purpose
			srv.Clock = a.clock
			srv.Messages = a.msgs

			var password string
			if s.SourceMode == config.SourceModeWeb {
				password = engine.LookupPassword(s.WebUser)
			}

			trigger := make(chan struct{}, config.ChannelBufferSize)
			stopHup := forwardHangup(trigger)
			defer stopHup()

			worker := &engine.Worker{
				Generator: &engine.Generator{
					Clock:    a.clock,
					Fetcher:  engine.NewHTTPFetcher(),
					Messages: a.msgs,
				},
				Sink:     srv,
				Config:   func() engine.SyncConfig { return engine.SyncConfigFrom(s, password) },
				Interval: time.Duration(s.RefreshMin) * time.Minute,
				Trigger:  trigger,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Start(ctx) })
			g.Go(func() error { return worker.Run(ctx) })

			err := g.Wait()
			if err == nil {
				slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&port, config.FlagPort, 0, config.FlagDescPort)
	return cmd
}

// forwardHangup turns SIGHUP into a non-blocking resync request.
func forwardHangup(trigger chan<- struct{}) func() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-hup:
				slog.Info(config.MsgResyncSignal, config.LogKeyComponent, config.CompMain)
				select {
				case trigger <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(hup)
		close(done)
	}
}

func newPasswordCmd(a *app) *cobra.Command {
	var user string
	userOf := func() (string, error) {
		u := user
		if u == "" {
			u = a.settings.WebUser
		}
		if u == "" {
			return "", errors.New(config.ErrUserRequired)
		}
		return u, nil
	}

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the CardDAV password stored in the OS keyring",
	}
	cmd.PersistentFlags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)

	set := &cobra.Command{
		Use:   "set",
		Short: "Read a password from stdin and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := userOf()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), config.MsgPasswordAsk, u)
			pass, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := engine.StorePassword(u, pass); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgPasswordSaved, u)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := userOf()
			if err != nil {
				return err
			}
			if err := engine.DeletePassword(u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgPasswordGone, u)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New(config.ErrPasswordEmpty)
	}
	return line, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Overrides the root hook: no settings or log file needed.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput, config.AppName, config.Version, config.Commit, config.Date, runtime.GOOS, runtime.GOARCH)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
