package db

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fightworker/internal/fight"
)

// FightWriter handles writing fight records to the database.
type FightWriter struct {
	pool *pgxpool.Pool
}

// NewFightWriter creates a new fight writer.
func NewFightWriter(pool *pgxpool.Pool) *FightWriter {
	return &FightWriter{pool: pool}
}

// WriteAll inserts all fights for a match within a single transaction.
// Uses an advisory lock derived from the match UUID so two workers never
// write the same match concurrently, and purges existing rows first so
// reprocessing is idempotent.
func (w *FightWriter) WriteAll(ctx context.Context, matchID uuid.UUID, fights []fight.FightRecord) error {
	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(matchID)); err != nil {
		return fmt.Errorf("acquire match write lock: %w", err)
	}

	if err := purgeFights(ctx, tx, matchID); err != nil {
		return fmt.Errorf("purge fights: %w", err)
	}

	now := time.Now().UTC()
	fightIDs := make([]uuid.UUID, len(fights))
	for i := range fights {
		fightIDs[i] = uuid.New()
	}

	if err := insertFights(ctx, tx, matchID, fights, fightIDs, now); err != nil {
		return fmt.Errorf("insert fights: %w", err)
	}

	if err := insertParticipants(ctx, tx, fights, fightIDs, now); err != nil {
		return fmt.Errorf("insert fight participants: %w", err)
	}

	return tx.Commit(ctx)
}

// advisoryLockKey generates a stable int64 key from a UUID for pg_advisory_lock.
func advisoryLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}

// purgeFights deletes existing fight data for a match, participants first to
// respect the FK.
func purgeFights(ctx context.Context, tx pgx.Tx, matchID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM fight_participants fp
		USING fights f
		WHERE fp.fight_id = f.id AND f.match_id = $1
	`, matchID); err != nil {
		return fmt.Errorf("purge fight_participants: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM fights WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("purge fights: %w", err)
	}

	return nil
}

// insertFights inserts fight rows using COPY protocol.
func insertFights(ctx context.Context, tx pgx.Tx, matchID uuid.UUID, fights []fight.FightRecord, fightIDs []uuid.UUID, now time.Time) error {
	if len(fights) == 0 {
		return nil
	}

	columns := []string{
		"id", "match_id", "map_name", "game_mode", "game_type", "match_started_at",
		"start_time", "end_time", "duration_seconds",
		"team_ids", "primary_team_1", "primary_team_2", "third_party_teams",
		"total_knocks", "total_kills", "total_damage",
		"fight_reason", "outcome_type", "winner_team_id", "loser_team_id",
		"center_x", "center_y", "center_z", "spread_meters", "created_at",
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"fights"},
		columns,
		pgx.CopyFromSlice(len(fights), func(i int) ([]any, error) {
			f := fights[i]
			cx, cy, cz := locationColumns(f.Center)
			return []any{
				fightIDs[i], matchID, f.MapName, f.GameMode, f.GameType, f.MatchedAt,
				f.Start, f.End, f.DurationSeconds,
				toInt32s(f.Teams), toInt32Ptr(f.PrimaryTeam1), toInt32Ptr(f.PrimaryTeam2), toInt32s(f.ThirdPartyTeams),
				f.TotalKnocks, f.TotalKills, f.TotalDamage,
				f.Reason, string(f.OutcomeType), toInt32Ptr(f.WinnerTeam), toInt32Ptr(f.LoserTeam),
				cx, cy, cz, f.SpreadMeters, now,
			}, nil
		}),
	)
	return err
}

// insertParticipants inserts participant rows using COPY protocol, keyed to
// their generated fight id.
func insertParticipants(ctx context.Context, tx pgx.Tx, fights []fight.FightRecord, fightIDs []uuid.UUID, now time.Time) error {
	type row struct {
		fightID uuid.UUID
		p       fight.ParticipantRecord
	}
	var rows []row
	for i := range fights {
		for _, p := range fights[i].Participants {
			rows = append(rows, row{fightID: fightIDs[i], p: p})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	columns := []string{
		"id", "fight_id", "player_name", "account_id", "team_id",
		"knocks", "kills", "damage_dealt", "damage_taken", "attacks",
		"was_knocked", "knocked_at", "was_killed", "killed_at",
		"team_outcome", "center_x", "center_y", "center_z", "created_at",
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"fight_participants"},
		columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			cx, cy, cz := locationColumns(r.p.Center)
			return []any{
				uuid.New(), r.fightID, r.p.Name, r.p.AccountID, r.p.TeamID,
				r.p.Knocks, r.p.Kills, r.p.DamageDealt, r.p.DamageTaken, r.p.Attacks,
				r.p.WasKnocked, r.p.KnockedAt, r.p.WasKilled, r.p.KilledAt,
				string(r.p.Outcome), cx, cy, cz, now,
			}, nil
		}),
	)
	return err
}

func locationColumns(l *fight.Location) (x, y, z *float64) {
	if l == nil {
		return nil, nil, nil
	}
	return &l.X, &l.Y, &l.Z
}

func toInt32s(vals []int) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v)
	}
	return out
}

func toInt32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	i := int32(*v)
	return &i
}
