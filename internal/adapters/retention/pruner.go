// Package retention deletes prediction records past their retention period.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// Config controls retention.
type Config struct {
	// RetentionDays is how long inputs are kept. 0 keeps them forever.
	RetentionDays int
	// Schedule is a standard cron expression, e.g. "0 3 * * *". Empty
	// disables scheduled pruning.
	Schedule string
}

// DefaultConfig keeps records for 90 days and prunes daily at 3 AM.
func DefaultConfig() Config {
	return Config{RetentionDays: 90, Schedule: "0 3 * * *"}
}

// Store is the part of the repository the pruner needs.
type Store interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithClock sets the clock used to compute the cutoff.
func WithClock(clock func() time.Time) Option {
	return func(p *Pruner) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pruner) {
		if l != nil {
			p.log = l
		}
	}
}

// Pruner deletes inputs older than the retention period; their outputs are
// removed by cascade.
type Pruner struct {
	store  Store
	config Config
	clock  func() time.Time
	log    logger.Logger
}

// NewPruner creates a pruner over store.
func NewPruner(store Store, cfg Config, opts ...Option) *Pruner {
	p := &Pruner{
		store:  store,
		config: cfg,
		clock:  func() time.Time { return time.Now().UTC() },
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the pruner configuration.
func (p *Pruner) Config() Config { return p.config }

// Cutoff returns the creation time before which inputs are deleted.
func (p *Pruner) Cutoff() time.Time {
	return p.clock().AddDate(0, 0, -p.config.RetentionDays)
}

// Prune runs one retention pass and returns the number of inputs deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := p.Cutoff()
	n, err := p.store.PruneOlderThan(ctx, cutoff)
	metrics.RecordRetentionRun(n, err)
	if err != nil {
		return 0, fmt.Errorf("prune before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	p.log.Debug(ctx, "retention pass finished",
		logger.Int64("deleted", n),
		logger.String("cutoff", cutoff.Format(time.RFC3339)))
	return n, nil
}
