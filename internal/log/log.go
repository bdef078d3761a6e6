// Package log centralizes the subsystem logger wiring used across the
// codebase, following the btcsuite/lnd convention of one package-level
// btclog.Logger per subsystem, all backed by a single writer configured at
// startup.
package log

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
)

// Disabled is a logger that discards everything. Packages default to it so
// that importing this codebase as a library never panics on a nil logger
// before the caller wires up a real backend.
var Disabled = btclog.Disabled

// subsystemLoggers maps each subsystem tag to the setter that installs a new
// logger for it. cmd/txgen's log.go wiring step walks this map once the
// backend is constructed.
var subsystemLoggers = make(map[string]func(btclog.Logger))

// Register associates a subsystem tag with the function that installs its
// logger. Packages call this from an init() so that Backend.SetLevel can reach
// every subsystem without cmd/txgen needing to import each package's
// internals directly.
func Register(tag string, setter func(btclog.Logger)) {
	subsystemLoggers[tag] = setter
}

// Backend wraps a btclog.Backend and the writer(s) feeding it, plus the
// convenience methods used to wire every registered subsystem at once.
type Backend struct {
	backend btclog.Backend
}

// NewBackend builds a logging backend that writes to stdout and, if logFile
// is non-empty, additionally tees to that file.
func NewBackend(logFile string, timestamps bool) (*Backend, error) {
	var w io.Writer = os.Stdout

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, f)
	}

	opts := []btclog.BackendOption{}
	if !timestamps {
		opts = append(opts, btclog.WithFlags(0))
	}

	return &Backend{backend: btclog.NewBackend(w, opts...)}, nil
}

// SetLevel installs a logger at the given level for every subsystem that has
// called Register, including this package's own top-level logger.
func (b *Backend) SetLevel(level string) {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lvl = btclog.LevelInfo
	}

	for tag, setter := range subsystemLoggers {
		l := b.backend.Logger(tag)
		l.SetLevel(lvl)
		setter(l)
	}

	txgenLog.SetLevel(lvl)
}

var txgenLog = btclog.Disabled

func init() {
	Register("TXGN", func(l btclog.Logger) { txgenLog = l })
}

// Log returns the top-level "TXGN" subsystem logger, used by cmd/txgen
// itself and anywhere else that doesn't warrant its own subsystem tag.
func Log() btclog.Logger { return txgenLog }
