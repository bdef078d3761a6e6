package main

import (
	"fmt"

	txlog "github.com/kaspa-tools/txgen/internal/log"
)

// setupLogging wires every registered subsystem logger to one backend at
// the requested level, returning the backend so main can leave it alive for
// the lifetime of the process.
func setupLogging(logFile, level string, timestamps bool) (*txlog.Backend, error) {
	backend, err := txlog.NewBackend(logFile, timestamps)
	if err != nil {
		return nil, fmt.Errorf("create logging backend: %w", err)
	}
	backend.SetLevel(level)
	return backend, nil
}
