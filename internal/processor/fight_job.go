package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fightworker/internal/db"
	"fightworker/internal/fight"
	"fightworker/internal/logging"
	"fightworker/internal/metrics"
	"fightworker/internal/pubg"
	"fightworker/internal/store"
	"fightworker/internal/telemetry"
)

// JobPayload represents the incoming job from the Redis queue.
type JobPayload struct {
	MatchID string `json:"match_id"`
}

// FightProcessor handles fight-tracking jobs: telemetry in, fight rows out.
type FightProcessor struct {
	ctx       context.Context
	reader    *db.MatchReader
	writer    *db.FightWriter
	refresher *db.SummaryRefresher
	api       *pubg.Client
	cache     *store.TelemetryCache // nil when no bucket is configured
}

// NewFightProcessor creates a new fight processor. cache may be nil.
func NewFightProcessor(ctx context.Context, reader *db.MatchReader, writer *db.FightWriter, refresher *db.SummaryRefresher, api *pubg.Client, cache *store.TelemetryCache) *FightProcessor {
	return &FightProcessor{
		ctx:       ctx,
		reader:    reader,
		writer:    writer,
		refresher: refresher,
		api:       api,
		cache:     cache,
	}
}

// Handle processes a single fight-tracking job from the queue. Any error is
// recorded on the match row (best effort) before being returned for the
// queue's retry/DLQ handling.
func (p *FightProcessor) Handle(payload []byte) error {
	logger := logging.Logger()
	startTime := time.Now()

	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("unmarshal job payload: %w", err)
	}

	matchID, err := uuid.Parse(job.MatchID)
	if err != nil {
		return fmt.Errorf("parse match_id: %w", err)
	}

	logger.Infof("processing fight job for match %s", matchID)

	exists, err := p.reader.MatchExists(p.ctx, matchID)
	if err != nil {
		return fmt.Errorf("check match exists: %w", err)
	}
	if !exists {
		logger.Warnf("match %s not found, skipping", matchID)
		return nil
	}

	if err := p.process(matchID); err != nil {
		metrics.MatchesFailed.Inc()
		if markErr := p.reader.MarkFailed(p.ctx, matchID, err.Error()); markErr != nil {
			logger.Warnf("mark match %s failed: %v", matchID, markErr)
		}
		return err
	}

	metrics.MatchesProcessed.Inc()
	metrics.ObserveProcessing(startTime)
	logger.Infof("fight job completed for match %s in %v", matchID, time.Since(startTime))
	return nil
}

func (p *FightProcessor) process(matchID uuid.UUID) error {
	logger := logging.Logger()

	info, err := p.reader.GetMatchInfo(p.ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match info: %w", err)
	}

	raw, err := p.loadTelemetry(info)
	if err != nil {
		return fmt.Errorf("load telemetry: %w", err)
	}
	metrics.TelemetryBytes.Add(float64(len(raw)))

	events, err := telemetry.DecodeRaw(raw)
	if err != nil {
		return fmt.Errorf("decode telemetry: %w", err)
	}

	logger.Infof("match %s: decoded %d telemetry events", info.PUBGMatchID, len(events))

	meta := fight.MatchMeta{
		MapName:   info.MapName,
		GameMode:  info.GameMode,
		GameType:  info.GameType,
		StartedAt: info.StartedAt,
	}

	fights, summary := fight.Track(events, info.PUBGMatchID, meta)
	metrics.EngagementsDetected.Add(float64(summary.Engagements))
	metrics.FightsDetected.Add(float64(summary.Fights))

	logger.Infof("match %s: %d combat events, %d engagements, %d fights",
		info.PUBGMatchID, summary.CombatEvents, summary.Engagements, summary.Fights)

	if err := p.writer.WriteAll(p.ctx, matchID, fights); err != nil {
		return fmt.Errorf("write fights: %w", err)
	}

	if err := p.reader.MarkProcessed(p.ctx, matchID, len(fights)); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	if p.refresher != nil {
		if err := p.refresher.RefreshAfterWrite(p.ctx); err != nil {
			// Fights are written; stale views are acceptable.
			logger.Warnf("summary refresh failed for match %s: %v", matchID, err)
		}
	}

	return nil
}

// loadTelemetry returns the raw telemetry document for a match, trying the
// S3 cache first, then the CDN via the stored or freshly discovered asset
// URL. Cache backfill failures never fail the job.
func (p *FightProcessor) loadTelemetry(info *db.MatchInfo) ([]byte, error) {
	logger := logging.Logger()

	if p.cache != nil {
		raw, err := p.cache.Get(p.ctx, info.PUBGMatchID)
		if err == nil {
			metrics.TelemetryCacheHits.Inc()
			return raw, nil
		}
		if !errors.Is(err, store.ErrCacheMiss) {
			logger.Warnf("telemetry cache read failed for %s: %v", info.PUBGMatchID, err)
		}
		metrics.TelemetryCacheMisses.Inc()
	}

	url := ""
	if info.TelemetryURL != nil {
		url = *info.TelemetryURL
	}
	if url == "" {
		match, err := p.api.GetMatch(p.ctx, info.PUBGMatchID)
		if err != nil {
			return nil, err
		}
		url = match.TelemetryURL
		if err := p.reader.SetTelemetryURL(p.ctx, info.ID, url); err != nil {
			logger.Warnf("store telemetry url for %s: %v", info.PUBGMatchID, err)
		}
	}

	raw, err := p.api.DownloadTelemetry(p.ctx, url)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Put(p.ctx, info.PUBGMatchID, raw); err != nil {
			logger.Warnf("telemetry cache write failed for %s: %v", info.PUBGMatchID, err)
		}
	}
	return raw, nil
}
