package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/examscore/internal/smoke"
)

// Default configuration constants.
const (
	defaultNumRequests = 1000
	defaultInvalid     = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRequests = flag.Int("requests", defaultNumRequests, "Number of valid feature sets to predict")
		invalid     = flag.Int("invalid", defaultInvalid, "Number of out-of-range feature sets expected to be rejected")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Write every request and response to this JSON file")
		logFile     = flag.String("log", "", "Also write log output to this file")
		verbose     = flag.Bool("verbose", false, "Log every prediction")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	closer, err := smoke.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	cfg := &smoke.Config{
		BaseURL:         *baseURL,
		NumRequests:     *numRequests,
		InvalidRequests: *invalid,
		Workers:         max(*workers, 1),
		Timeout:         *timeout,
		OutputFile:      *outputFile,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	err = smoke.Run(ctx, cfg)
	cancel()
	_ = closer.Close()
	if err != nil {
		_, _ = os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
