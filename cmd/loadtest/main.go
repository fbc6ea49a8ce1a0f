package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/attrition/internal/loadtest"
)

// Default configuration constants.
const (
	defaultNumRequests  = 1000
	defaultInvalidRatio = 0.2
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultTestTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		requests   = flag.Int("requests", defaultNumRequests, "Number of prediction requests to send")
		invalid    = flag.Float64("invalid", defaultInvalidRatio, "Share of requests corrupted to fail validation")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 1, "Generator seed")
		outputFile = flag.String("output", "", "Write the generated requests to this JSON file")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log unexpected outcomes per request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFormat); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:      *baseURL,
		NumRequests:  *requests,
		InvalidRatio: *invalid,
		Workers:      *workers,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
		Seed:         *seed,
	}

	if _, err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
