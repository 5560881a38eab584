package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchInfo is the metadata row the worker needs before processing a match.
// Map, mode and type are echoed verbatim into every fight record.
type MatchInfo struct {
	ID           uuid.UUID
	PUBGMatchID  string
	MapName      string
	GameMode     string
	GameType     string
	StartedAt    time.Time
	TelemetryURL *string
}

// MatchReader provides read access to the matches table and owns the match
// status transitions around a processing attempt.
type MatchReader struct {
	pool *pgxpool.Pool
}

// NewMatchReader creates a new match metadata reader.
func NewMatchReader(pool *pgxpool.Pool) *MatchReader {
	return &MatchReader{pool: pool}
}

// MatchExists checks if a match row exists.
func (r *MatchReader) MatchExists(ctx context.Context, matchID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)
	`, matchID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetMatchInfo retrieves match metadata by its UUID.
func (r *MatchReader) GetMatchInfo(ctx context.Context, matchID uuid.UUID) (*MatchInfo, error) {
	info := &MatchInfo{ID: matchID}
	err := r.pool.QueryRow(ctx, `
		SELECT pubg_match_id, map_name, game_mode, game_type, started_at, telemetry_url
		FROM matches
		WHERE id = $1
	`, matchID).Scan(&info.PUBGMatchID, &info.MapName, &info.GameMode, &info.GameType,
		&info.StartedAt, &info.TelemetryURL)
	if err != nil {
		return nil, fmt.Errorf("get match info: %w", err)
	}
	return info, nil
}

// SetTelemetryURL stores the telemetry asset URL discovered via the API so
// reprocessing skips the match lookup call.
func (r *MatchReader) SetTelemetryURL(ctx context.Context, matchID uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE matches SET telemetry_url = $2 WHERE id = $1
	`, matchID, url)
	return err
}

// MarkProcessed records a successful processing pass and the fight count.
func (r *MatchReader) MarkProcessed(ctx context.Context, matchID uuid.UUID, fightCount int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE matches
		SET status = 'processed', status_detail = NULL, fight_count = $2, processed_at = now()
		WHERE id = $1
	`, matchID, fightCount)
	return err
}

// MarkFailed records a failed processing pass with a diagnostic message.
// The job keeps its queue-level retry budget; this is for visibility.
func (r *MatchReader) MarkFailed(ctx context.Context, matchID uuid.UUID, diag string) error {
	if len(diag) > 500 {
		diag = diag[:500]
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE matches
		SET status = 'failed', status_detail = $2
		WHERE id = $1
	`, matchID, diag)
	return err
}

// ErrNoRows is exposed for error checking.
var ErrNoRows = pgx.ErrNoRows
