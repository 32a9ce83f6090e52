package limiter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG is a PostgreSQL-backed limiter with one fixed window per key. The
// increment is a single upsert statement, so two simultaneous attempts
// against the same key can never both observe count-1 and both proceed.
type PG struct {
	pool   pgxQuerier
	window time.Duration
	limits map[string]int
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter over any pgx querier,
// typically the pool the repositories share.
func NewPG(q pgxQuerier, window time.Duration, limits map[string]int) *PG {
	return &PG{pool: q, window: window, limits: limits}
}

func (l *PG) limitFor(endpoint string) int {
	if n, ok := l.limits[endpoint]; ok {
		return n
	}
	return DefaultLoginLimit
}

// Check reads the current window; deny when its count has reached the limit.
// A missing or elapsed window allows; the next Record opens a fresh one.
func (l *PG) Check(ctx context.Context, identifier, endpoint string) (bool, time.Duration, error) {
	const q = `
SELECT request_count, attempt_limit, window_end
FROM rate_limit_windows WHERE identifier=$1 AND endpoint=$2`
	var count, limit int
	var windowEnd time.Time
	err := l.pool.QueryRow(ctx, q, identifier, endpoint).Scan(&count, &limit, &windowEnd)
	switch err {
	case nil:
		now := time.Now()
		if !windowEnd.After(now) {
			return true, 0, nil
		}
		if count >= limit {
			return false, time.Until(windowEnd), nil
		}
		return true, 0, nil
	case pgx.ErrNoRows:
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Record counts one attempt. The upsert atomically either rolls the key over
// to a fresh window or increments the live one, and flips the exceeded flag
// once the count reaches the limit.
func (l *PG) Record(ctx context.Context, identifier, endpoint string) (bool, error) {
	limit := l.limitFor(endpoint)

	const q = `
INSERT INTO rate_limit_windows (identifier, endpoint, window_start, window_end, request_count, attempt_limit, exceeded)
VALUES ($1, $2, now(), now() + $3::interval, 1, $4, 1 >= $4)
ON CONFLICT (identifier, endpoint) DO UPDATE
SET
  window_start  = CASE WHEN rate_limit_windows.window_end <= now() THEN now() ELSE rate_limit_windows.window_start END,
  window_end    = CASE WHEN rate_limit_windows.window_end <= now() THEN now() + $3::interval ELSE rate_limit_windows.window_end END,
  request_count = CASE WHEN rate_limit_windows.window_end <= now() THEN 1 ELSE rate_limit_windows.request_count + 1 END,
  attempt_limit = $4,
  exceeded      = CASE WHEN rate_limit_windows.window_end <= now() THEN 1 >= $4 ELSE rate_limit_windows.request_count + 1 >= $4 END
RETURNING exceeded`
	var exceeded bool
	if err := l.pool.QueryRow(ctx, q, identifier, endpoint, l.window, limit).Scan(&exceeded); err != nil {
		return false, err
	}
	return exceeded, nil
}
