// run.go implements the 'contention run' command.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kolkov/contention/internal/contention/coordinator"
	"github.com/kolkov/contention/internal/contention/report"
)

// runConfig holds configuration for the run command.
type runConfig struct {
	// Number of workers
	workers int

	// Value the shared counter is driven to
	target int64

	// Release number that gets an injected lock state error (0 = none)
	failRelease int64
}

// runCommand implements the 'contention run' command.
//
// Flow:
//  1. Parse arguments
//  2. Run the coordinator
//  3. Print the report
//
// Returns the process exit code.
//
// Example:
//
//	contention run
//	contention run -workers 4 -target 50000
func runCommand(w io.Writer, args []string) int {
	config, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var opts []coordinator.Option
	if config.failRelease > 0 {
		opts = append(opts, coordinator.WithReleaseFault(config.failRelease))
	}

	fmt.Fprintf(w, "Hello from main thread!!\n\n")

	rep, err := coordinator.New(opts...).Run(config.workers, config.target)
	if rep != nil {
		report.Format(w, rep)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseRunArgs parses command-line arguments for 'contention run'.
//
// Accepts "-flag value" and "-flag=value" forms.
func parseRunArgs(args []string) (*runConfig, error) {
	config := &runConfig{
		workers: coordinator.DefaultWorkers,
		target:  coordinator.DefaultTarget,
	}

	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		if !hasValue {
			switch name {
			case "-workers", "-target", "-fail-release":
				if i+1 >= len(args) {
					return nil, fmt.Errorf("%s flag requires an argument", name)
				}
				i++
				value = args[i]
			}
		}

		switch name {
		case "-workers":
			n, err := parsePositive(name, value)
			if err != nil {
				return nil, err
			}
			config.workers = int(n)
		case "-target":
			n, err := parsePositive(name, value)
			if err != nil {
				return nil, err
			}
			config.target = n
		case "-fail-release":
			n, err := parsePositive(name, value)
			if err != nil {
				return nil, err
			}
			config.failRelease = n
		default:
			return nil, fmt.Errorf("unknown argument: %s", args[i])
		}
	}

	return config, nil
}

// parsePositive parses a flag value that must be >= 1.
func parsePositive(flag, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value for %s", flag)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", flag, n)
	}
	return n, nil
}
