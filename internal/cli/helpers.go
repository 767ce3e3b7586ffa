package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/stagegen/internal/logging"
	"github.com/aretw0/stagegen/pkg/domain"
)

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which one
// arrived.
type SignalContext struct {
	context.Context
	Cancel func()

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext derives a SignalContext from parent.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// UsageError is a bad flag combination or value. It exits with status 2.
type UsageError struct {
	Problems []string
}

func (e *UsageError) Error() string {
	return "invalid arguments: " + strings.Join(e.Problems, "; ")
}

// ExitCode maps an error returned by a command to a process exit status.
//
//	0 success, 1 I/O or unknown, 2 usage or rule document, 3 stage failure
func ExitCode(err error) int {
	var usage *UsageError
	if errors.As(err, &usage) {
		return 2
	}
	return domain.Classify(err).ExitCode()
}

// StageFailure reports that at least one stage did not generate.
type StageFailure struct {
	Errs []error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("%d stage(s) failed: %v", len(e.Errs), errors.Join(e.Errs...))
}

// Unwrap exposes every stage error to errors.As.
func (e *StageFailure) Unwrap() []error { return e.Errs }

// CreateLogger configures the application logger from the config.
func CreateLogger(cfg Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, &UsageError{Problems: []string{err.Error()}}
	}
	return logging.NewWithFormat(os.Stderr, level, logging.Format(cfg.LogFormat)), nil
}
