package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/attrition/internal/domain/features"
	"github.com/okian/attrition/internal/domain/features/featurestest"
	"github.com/okian/attrition/pkg/logger"
)

// Commute distances drawn for valid requests, in km.
const (
	commuteMin   = 1
	commuteRange = 30
)

var departments = []string{"IT", "Sales", "R&D", "Finance", "Support"}

// corruptions each break exactly one contract or rule check.
var corruptions = []func(m map[string]any){
	func(m map[string]any) { m[features.Age] = 10 },
	func(m map[string]any) { m[features.Genre] = 7 },
	func(m map[string]any) { delete(m, features.Poste) },
	func(m map[string]any) { m[features.HeureSupplementaires] = nil },
}

// generateRequests builds config.NumRequests requests. Each request is
// corrupted independently with probability InvalidRatio.
func generateRequests(ctx context.Context, config *Config, stats *Stats) ([]Request, error) {
	logger.Get().Info(ctx, "generating prediction requests",
		logger.Int("numRequests", config.NumRequests),
		logger.Float64("invalidRatio", config.InvalidRatio))

	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15))
	year := time.Now().UTC().Year()

	requests := make([]Request, config.NumRequests)
	for i := range requests {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		requests[i] = generateSingleRequest(rng, year, rng.Float64() < config.InvalidRatio)
	}

	stats.Generated = len(requests)
	logger.Get().Info(ctx, "generated requests successfully", logger.Int("count", len(requests)))
	return requests, nil
}

// generateSingleRequest picks a template employee and varies fields that no
// rule ties to others.
func generateSingleRequest(rng *rand.Rand, year int, invalid bool) Request {
	var (
		kind string
		m    map[string]any
	)
	switch rng.IntN(3) {
	case 0:
		kind, m = KindStaying, featurestest.Staying(year)
	case 1:
		kind, m = KindLeaving, featurestest.Leaving(year)
	default:
		kind, m = KindValid, featurestest.Valid(year)
	}

	m[features.DistanceDomicileTravail] = commuteMin + rng.IntN(commuteRange)
	m[features.Departement] = departments[rng.IntN(len(departments))]

	if invalid {
		kind = KindInvalid
		corruptions[rng.IntN(len(corruptions))](m)
	}

	return Request{ID: uuid.NewString(), Kind: kind, Features: m}
}
