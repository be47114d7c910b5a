// Package main implements the contention CLI tool.
//
// The tool runs the non-blocking mutual-exclusion counter and the thread
// lifecycle demos:
//
//  1. run       - workers race a shared counter to a target through a trylock
//  2. lifecycle - create, join and exit with exit values
//  3. identity  - self identification and identity comparison
//  4. serve     - the run command over HTTP
//
// Usage:
//
//	contention run -workers 2 -target 10000
//	contention -logtostderr -v=2 run
//	contention serve -addr :8080
//
// Logging flags (glog) go before the command.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/kolkov/contention/contention"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]

	var code int
	switch command {
	case "run":
		code = runCommand(os.Stdout, args[1:])
	case "lifecycle":
		code = lifecycleCommand(os.Stdout)
	case "identity":
		code = identityCommand(os.Stdout)
	case "serve":
		code = serveCommand(args[1:])
	case "version", "--version":
		info := contention.GetInfo()
		fmt.Printf("contention version %s (%s)\n", info.Version, info.Algorithm)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		code = 1
	}

	if code != 0 {
		glog.Flush()
		os.Exit(code)
	}
}

func printUsage() {
	fmt.Print(`contention - non-blocking mutual-exclusion counter

USAGE:
    contention [logging flags] <command> [arguments]

COMMANDS:
    run        Race workers to a target through a trylock and report contention
    lifecycle  Create/join/exit demo with exit values
    identity   Self-identification and identity comparison demo
    serve      Serve runs over HTTP
    version    Show version information
    help       Show this help message

RUN FLAGS:
    -workers N        Number of workers (default 2)
    -target T         Value to drive the shared counter to (default 10000)
    -fail-release K   Inject a lock state error on the K-th release

SERVE FLAGS:
    -addr ADDR        Listen address (default :8080)
    -max-workers N    Largest worker count accepted per request (default 64)
    -max-target T     Largest target accepted per request (default 10000000)

LOGGING FLAGS:
    -logtostderr      Log to stderr instead of files
    -v=N              Verbosity (1: run summary, 2: per worker)

EXAMPLES:
    # Reference run: 2 workers, target 10000
    contention run

    # Four workers with per-worker logging
    contention -logtostderr -v=2 run -workers 4 -target 50000

    # Watch a worker abort on a failed unlock
    contention run -fail-release 100

    # HTTP
    contention serve -addr :8080
    curl localhost:8080/run/2/10000

`)
}
