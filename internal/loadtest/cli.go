package loadtest

import (
	"fmt"
	"os"

	"github.com/okian/attrition/pkg/logger"
)

// SetupLogging initializes the process logger with format "text" or "json".
func SetupLogging(format string) error {
	if err := logger.InitWithFormat(format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Attrition Load Test Tool
========================

Sends generated employees to POST /predict and checks that every accepted
request was stored.

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -requests int
        Number of prediction requests to send (default 1000)
  -invalid float
        Share of requests corrupted to fail validation (default 0.2)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Generator seed (default 1)
  -output string
        Write the generated requests to this JSON file
  -log-format string
        Log format: text or json (default "text")
  -verbose
        Log unexpected outcomes per request
  -help
        Show this help message

Examples:
  go run ./cmd/loadtest -requests 5000 -workers 16
  go run ./cmd/loadtest -invalid 0 -output requests.json
`)
}
