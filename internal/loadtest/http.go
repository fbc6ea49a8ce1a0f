package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/attrition/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body and a request id
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	return c.client.Do(req)
}

// getJSON fetches url and decodes the body into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// outcome classifies one response.
type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeRejected
	outcomeRateLimited
	outcomeFailed
)

// submitRequests sends requests with config.Workers concurrent workers.
func submitRequests(ctx context.Context, config *Config, requests []Request, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "submitting prediction requests",
		logger.Int("count", len(requests)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/predict"

	var submitted, accepted, rejected, limited, failed, leaving, unexpected int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for _, r := range requests {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, pred := submitSingleRequest(gctx, client, url, r)
			atomic.AddInt64(&submitted, 1)
			switch res {
			case outcomeAccepted:
				atomic.AddInt64(&accepted, 1)
				if pred.Prediction == 1 {
					atomic.AddInt64(&leaving, 1)
				}
			case outcomeRejected:
				atomic.AddInt64(&rejected, 1)
			case outcomeRateLimited:
				atomic.AddInt64(&limited, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
			if (r.Kind == KindInvalid) != (res == outcomeRejected) && res != outcomeRateLimited {
				atomic.AddInt64(&unexpected, 1)
				if config.Verbose {
					log.Warn(gctx, "unexpected outcome",
						logger.String("requestID", r.ID),
						logger.String("kind", r.Kind),
						logger.Int("outcome", int(res)))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.Submitted = int(submitted)
	stats.Accepted = int(accepted)
	stats.Rejected = int(rejected)
	stats.RateLimited = int(limited)
	stats.Failed = int(failed)
	stats.Leaving = int(leaving)
	stats.Unexpected = int(unexpected)

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed))
	return nil
}

// submitSingleRequest posts one request and classifies the answer.
func submitSingleRequest(ctx context.Context, client *HTTPClient, url string, r Request) (outcome, PredictResponse) {
	resp, err := client.Post(ctx, url, r.ID, map[string]any{"features": r.Features})
	if err != nil {
		return outcomeFailed, PredictResponse{}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcomeFailed, PredictResponse{}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var pred PredictResponse
		if err := json.Unmarshal(body, &pred); err != nil {
			return outcomeFailed, PredictResponse{}
		}
		return outcomeAccepted, pred
	case http.StatusBadRequest:
		return outcomeRejected, PredictResponse{}
	case http.StatusTooManyRequests:
		return outcomeRateLimited, PredictResponse{}
	default:
		return outcomeFailed, PredictResponse{}
	}
}
