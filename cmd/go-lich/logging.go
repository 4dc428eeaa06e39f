package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tartampluch/go-lich/internal/config"
)

// logTarget selects where a command sends its logs.
type logTarget struct {
	// console mirrors logs on stdout.
	console bool
	// fresh truncates app.log first; only the long-running server does so.
	fresh bool
}

func targetFor(command string, debug bool) logTarget {
	if command == cmdServe {
		return logTarget{console: true, fresh: true}
	}
	return logTarget{console: debug}
}

// setupLogging installs a JSON slog logger writing to app.log in the user
// cache directory and, when requested, to stdout. The returned closer is
// nil when no log file could be opened.
func setupLogging(debugMode bool, target logTarget) io.Closer {
	var writers []io.Writer
	if target.console {
		writers = append(writers, os.Stdout)
	}

	logFile, err := openLogFile(target.fresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, config.LogFileName, err)
	} else {
		writers = append(writers, logFile)
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	})
	slog.SetDefault(slog.New(handler))

	if logFile == nil {
		return nil
	}
	return logFile
}

// openLogFile opens app.log in append mode so that one-shot commands and a
// running server can share it; fresh empties it first.
func openLogFile(fresh bool) (*os.File, error) {
	path, err := getLogFilePath()
	if err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if fresh {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, config.FilePermUserRW)
}

// getLogFilePath returns <UserCacheDir>/<AppID>/app.log, creating the
// directory when needed.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}

// logStartupInfo records the build, the platform and the effective
// server settings once at serve start.
func logStartupInfo(s config.Settings) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
		slog.Group(config.LogKeySettings,
			slog.Int(config.LogKeyPort, s.Port),
			slog.Int(config.LogKeyBirthYear, s.BirthYear),
			slog.String(config.LogKeyMode, s.SourceMode),
			slog.Int(config.LogKeyDays, s.HorizonDays),
		),
	)
}
