package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db                    *sql.DB
	clock                 func() time.Time
	log                   logger.Logger
	metricsUpdateInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path, applies the schema
// and starts the background metrics updater bound to ctx.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, newStorageError("open", err)
	}

	// One connection: WAL allows concurrent readers but SQLite has a single
	// writer, and the foreign_keys pragma is per connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:                    db,
		clock:                 func() time.Time { return time.Now().UTC() },
		log:                   logger.Nop(),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	mctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.startMetricsUpdater(mctx)
	return s, nil
}

// sqliteDSN builds a file URI for path. The path is escaped so that '?',
// '#' and '%' in file names do not leak into the pragma query.
func sqliteDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     path,
		RawQuery: "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
	}
	return u.String()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaV1); err != nil {
		return newStorageError("create_schema", err)
	}
	if _, err := s.db.ExecContext(ctx, insertSchemaVersion, SchemaVersion, s.clock().Unix()); err != nil {
		return newStorageError("insert_schema_version", err)
	}
	return nil
}

// DB exposes the underlying handle for maintenance and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close stops the metrics updater and closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		if cerr := s.db.Close(); cerr != nil {
			err = newStorageError("close", cerr)
		}
	})
	return err
}

// SavePrediction inserts the input row and its output row in one
// transaction.
func (s *SQLiteStore) SavePrediction(ctx context.Context, features map[string]any, out Output) (Saved, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	blob, err := json.Marshal(features)
	if err != nil {
		return Saved{}, fmt.Errorf("encode features: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Saved{}, newStorageError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.clock()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO model_inputs (features, created_at) VALUES (?, ?)`,
		string(blob), now.UnixNano())
	if err != nil {
		return Saved{}, s.classify("insert_input", err)
	}
	inputID, err := res.LastInsertId()
	if err != nil {
		return Saved{}, newStorageError("insert_input", err)
	}

	var prob sql.NullFloat64
	if out.Probability != nil {
		prob = sql.NullFloat64{Float64: *out.Probability, Valid: true}
	}
	res, err = tx.ExecContext(ctx,
		`INSERT INTO model_outputs (input_id, prediction, probability, created_at) VALUES (?, ?, ?, ?)`,
		inputID, out.Prediction, prob, now.UnixNano())
	if err != nil {
		return Saved{}, s.classify("insert_output", err)
	}
	outputID, err := res.LastInsertId()
	if err != nil {
		return Saved{}, newStorageError("insert_output", err)
	}

	if err := tx.Commit(); err != nil {
		return Saved{}, newStorageError("commit", err)
	}
	return Saved{InputID: inputID, OutputID: outputID, CreatedAt: now}, nil
}

// Input returns one input record.
func (s *SQLiteStore) Input(ctx context.Context, id int64) (InputRecord, error) {
	defer s.observeQuery(time.Now())

	var (
		blob    string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT features, created_at FROM model_inputs WHERE id = ?`, id).Scan(&blob, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return InputRecord{}, fmt.Errorf("input %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return InputRecord{}, newStorageError("get_input", err)
	}

	rec := InputRecord{ID: id, CreatedAt: time.Unix(0, created).UTC()}
	if err := json.Unmarshal([]byte(blob), &rec.Features); err != nil {
		return InputRecord{}, fmt.Errorf("decode features of input %d: %w", id, err)
	}
	return rec, nil
}

// Outputs returns the outputs of one input, oldest first.
func (s *SQLiteStore) Outputs(ctx context.Context, inputID int64) ([]OutputRecord, error) {
	defer s.observeQuery(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_id, prediction, probability, created_at
FROM model_outputs
WHERE input_id = ?
ORDER BY id ASC`, inputID)
	if err != nil {
		return nil, newStorageError("list_outputs", err)
	}
	defer rows.Close()

	var out []OutputRecord
	for rows.Next() {
		var (
			rec     OutputRecord
			prob    sql.NullFloat64
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.InputID, &rec.Prediction, &prob, &created); err != nil {
			return nil, newStorageError("scan_output", err)
		}
		if prob.Valid {
			p := prob.Float64
			rec.Probability = &p
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError("list_outputs", err)
	}
	return out, nil
}

// DeleteInput removes an input; its outputs go with it.
func (s *SQLiteStore) DeleteInput(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM model_inputs WHERE id = ?`, id)
	if err != nil {
		return newStorageError("delete_input", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newStorageError("delete_input", err)
	}
	if n == 0 {
		return fmt.Errorf("input %d: %w", id, ErrNotFound)
	}
	return nil
}

// PruneOlderThan deletes inputs created strictly before cutoff.
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM model_inputs WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, newStorageError("prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newStorageError("prune", err)
	}
	return n, nil
}

// Count returns the number of stored inputs and outputs.
func (s *SQLiteStore) Count(ctx context.Context) (Counts, error) {
	defer s.observeQuery(time.Now())

	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM model_inputs), (SELECT COUNT(*) FROM model_outputs)`).
		Scan(&c.Inputs, &c.Outputs)
	if err != nil {
		return Counts{}, newStorageError("count", err)
	}
	return c, nil
}

// classify maps constraint failures to ErrConstraint.
func (s *SQLiteStore) classify(op string, err error) error {
	if strings.Contains(err.Error(), "constraint failed") {
		metrics.RecordErrorByComponent("repository", "constraint")
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	metrics.RecordErrorByComponent("repository", "storage")
	return newStorageError(op, err)
}

func (s *SQLiteStore) observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

// startMetricsUpdater refreshes the stored-records gauge until ctx ends.
func (s *SQLiteStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c, err := s.Count(ctx)
				if err != nil {
					if ctx.Err() == nil {
						s.log.Warn(ctx, "store metrics update failed", logger.Error(err))
					}
					continue
				}
				metrics.UpdateStoredInputs(c.Inputs)
			}
		}
	}()
}
