package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
)

// main delegates to runMain so that deferred calls (closing the log
// file, releasing the signal context) run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain executes the command tree and maps the outcome to an exit code.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{clock: engine.RealClock{}}
	defer a.close()

	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		fmt.Fprintln(os.Stderr, "Error:", err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}
