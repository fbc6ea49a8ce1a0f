package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/attrition/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Verification failures.
var (
	ErrNothingAccepted = errors.New("no prediction request was accepted")
	ErrStoredMismatch  = errors.New("stored count does not match accepted requests")
)

// Run executes the complete load test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Workers < 1 {
		config.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting attrition load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Snapshot stored records
	before, err := storedInputs(ctx, client, config)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}

	// Step 3: Generate requests
	requests, err := generateRequests(ctx, config, stats)
	if err != nil {
		return nil, fmt.Errorf("request generation failed: %w", err)
	}

	// Step 4: Submit requests concurrently
	if err := submitRequests(ctx, config, requests, stats); err != nil {
		return nil, fmt.Errorf("request submission failed: %w", err)
	}

	// Step 5: Verify the store grew by the accepted count
	after, err := storedInputs(ctx, client, config)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	stats.StoredDelta = after - before
	if err := verifyResults(ctx, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 6: Save requests to file
	if config.OutputFile != "" {
		if err := saveRequestsToFile(ctx, config.OutputFile, requests); err != nil {
			log.Warn(ctx, "failed to save requests to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Get(ctx, config.BaseURL+"/health")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// storedInputs reads storedInputs from GET /stats.
func storedInputs(ctx context.Context, client *HTTPClient, config *Config) (int64, error) {
	var body map[string]any
	if err := client.getJSON(ctx, config.BaseURL+"/stats", &body); err != nil {
		return 0, err
	}
	n, ok := body["storedInputs"].(float64)
	if !ok {
		return 0, fmt.Errorf("stats: storedInputs missing")
	}
	return int64(n), nil
}

// verifyResults checks that every accepted request was stored.
func verifyResults(ctx context.Context, stats *Stats) error {
	if stats.Submitted > 0 && stats.Accepted == 0 {
		return ErrNothingAccepted
	}
	if stats.Unexpected > 0 {
		logger.Get().Warn(ctx, "requests answered differently than generated",
			logger.Int("unexpected", stats.Unexpected))
	}
	if stats.StoredDelta != int64(stats.Accepted) {
		return fmt.Errorf("%w: stored %d, accepted %d", ErrStoredMismatch, stats.StoredDelta, stats.Accepted)
	}
	return nil
}

// saveRequestsToFile writes the generated requests as a JSON array.
func saveRequestsToFile(ctx context.Context, filename string, requests []Request) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal requests: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "requests saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
		logger.Int("predictedLeaving", stats.Leaving),
		logger.Int64("storedDelta", stats.StoredDelta),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
