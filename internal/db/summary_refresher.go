package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fightworker/internal/logging"
)

// SummaryRefresher refreshes the reporting materialized views after fight
// writes land. Refresh failures are logged and never fail the job; the views
// catch up on the next successful match.
type SummaryRefresher struct {
	pool *pgxpool.Pool
}

// NewSummaryRefresher creates a new summary refresher instance.
func NewSummaryRefresher(pool *pgxpool.Pool) *SummaryRefresher {
	return &SummaryRefresher{pool: pool}
}

// summaryViews lists the materialized views derived from fights and
// fight_participants, ordered by dependency.
var summaryViews = []string{
	"mv_fight_daily_counts",
	"mv_team_fight_outcomes",
	"mv_player_fight_stats",
	"mv_map_fight_hotspots",
}

// RefreshAfterWrite refreshes all fight summary views concurrently-safe.
// Returns the last error for callers that want to log it; partial refreshes
// are fine since each view is independent.
func (r *SummaryRefresher) RefreshAfterWrite(ctx context.Context) error {
	logger := logging.Logger()

	var lastErr error
	for _, view := range summaryViews {
		started := time.Now()
		_, err := r.pool.Exec(ctx, fmt.Sprintf(`REFRESH MATERIALIZED VIEW CONCURRENTLY %s`, view))
		if err != nil {
			logger.Warnf("refresh %s failed: %v", view, err)
			lastErr = err
			continue
		}
		logger.Debugf("refreshed %s in %v", view, time.Since(started))
	}
	return lastErr
}
