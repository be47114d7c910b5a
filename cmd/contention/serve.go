// serve.go implements the 'contention serve' command.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/kolkov/contention/contention"
	"github.com/kolkov/contention/internal/contention/coordinator"
	"github.com/kolkov/contention/internal/contention/report"
)

// serveConfig holds configuration for the serve command.
type serveConfig struct {
	// Listen address
	addr string

	// Largest worker count accepted per request
	maxWorkers int

	// Largest target accepted per request
	maxTarget int64
}

// status is the JSON body of an error response.
type status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// serveCommand implements the 'contention serve' command.
//
// Routes:
//
//	GET /run/:workers/:target   run and return the report as JSON
//	GET /version                version information
func serveCommand(args []string) int {
	config, err := parseServeArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	glog.Infof("listening on %s", config.addr)
	if err := http.ListenAndServe(config.addr, newRouter(config)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseServeArgs parses command-line arguments for 'contention serve'.
func parseServeArgs(args []string) (*serveConfig, error) {
	config := &serveConfig{
		addr:       ":8080",
		maxWorkers: 64,
		maxTarget:  10000000,
	}

	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		if !hasValue {
			switch name {
			case "-addr", "-max-workers", "-max-target":
				if i+1 >= len(args) {
					return nil, fmt.Errorf("%s flag requires an argument", name)
				}
				i++
				value = args[i]
			}
		}

		switch name {
		case "-addr":
			config.addr = value
		case "-max-workers":
			n, err := parsePositive(name, value)
			if err != nil {
				return nil, err
			}
			config.maxWorkers = int(n)
		case "-max-target":
			n, err := parsePositive(name, value)
			if err != nil {
				return nil, err
			}
			config.maxTarget = n
		default:
			return nil, fmt.Errorf("unknown argument: %s", args[i])
		}
	}

	return config, nil
}

// newRouter returns the HTTP handler for config, wrapped in panic recovery.
func newRouter(config *serveConfig) http.Handler {
	router := httprouter.New()
	router.GET("/run/:workers/:target", runHandler(config))
	router.GET("/version", versionHandler)
	return recoverer(router)
}

// runHandler serves GET /run/:workers/:target.
func runHandler(config *serveConfig) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		workers, err := strconv.Atoi(ps.ByName("workers"))
		if err != nil || workers < 1 || workers > config.maxWorkers {
			writeStatus(w, http.StatusBadRequest,
				fmt.Sprintf("workers must be between 1 and %d", config.maxWorkers))
			return
		}
		target, err := strconv.ParseInt(ps.ByName("target"), 10, 64)
		if err != nil || target < 1 || target > config.maxTarget {
			writeStatus(w, http.StatusBadRequest,
				fmt.Sprintf("target must be between 1 and %d", config.maxTarget))
			return
		}

		rep, err := coordinator.New().Run(workers, target)
		if err != nil && rep == nil {
			writeStatus(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err != nil {
			glog.Warningf("run %d/%d: %v", workers, target, err)
		}
		writeJSON(w, http.StatusOK, report.NewDocument(rep))
	}
}

// versionHandler serves GET /version.
func versionHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, contention.GetInfo())
}

// recoverer turns a handler panic into a 500 response and logs it with a stack.
func recoverer(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = errors.Errorf("%v", rec)
				}
				glog.Errorf("recovered: %+v", errors.WithStack(err))
				writeStatus(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		handler.ServeHTTP(w, r)
	})
}

func writeStatus(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, status{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Errorf("encode response: %v", err)
	}
}
