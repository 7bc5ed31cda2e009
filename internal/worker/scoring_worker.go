package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// Evaluator scores a completed session. Satisfied by service.AnalysisService.
type Evaluator interface {
	Evaluation(ctx context.Context, sessionID uuid.UUID) (*model.Evaluation, error)
}

// EvaluationWriter persists evaluations. Satisfied by repository.EvaluationRepository.
type EvaluationWriter interface {
	Upsert(ctx context.Context, e *model.Evaluation) error
	UpsertBatch(ctx context.Context, batch []model.Evaluation) error
}

// ScoringWorker consumes persist_reports_queue, scores each completed session
// and stores the result in the evaluations table.
type ScoringWorker struct {
	evaluator Evaluator
	store     EvaluationWriter
	rdb       *redis.Client
	log       zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
}

func NewScoringWorker(evaluator Evaluator, store EvaluationWriter, rdb *redis.Client, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		evaluator:    evaluator,
		store:        store,
		rdb:          rdb,
		log:          log.With().Str("component", "scoring_worker").Logger(),
		batchSize:    ScoreBatchSize,
		batchTimeout: ScoreBatchTimeout,
		pollTimeout:  ScorePollTimeout,
	}
}

// ─── Worker loop with batching ───────────────────────────────────

func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]uuid.UUID, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, w.pollTimeout, config.WorkerKey.PersistReportsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			id, err := uuid.Parse(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("payload", item[1]).Msg("Invalid session id")
				continue
			}
			batch = append(batch, id)
		}
	}
}

// ─── Scoring and batch upsert ────────────────────────────────────

// flushSafe scores the batch and stores the evaluations in one statement,
// falling back to single upserts. Sessions that cannot be scored yet or
// stored are requeued.
func (w *ScoringWorker) flushSafe(ctx context.Context, batch []uuid.UUID) {
	if len(batch) == 0 {
		return
	}

	evaluations := make([]model.Evaluation, 0, len(batch))
	for _, id := range dedupe(batch) {
		ev, err := w.evaluator.Evaluation(ctx, id)
		switch {
		case err == nil:
			evaluations = append(evaluations, *ev)
		case isPermanent(err):
			w.log.Warn().Err(err).Str("session_id", id.String()).Msg("Skipping session")
		default:
			w.log.Error().Err(err).Str("session_id", id.String()).Msg("Scoring failed, requeueing")
			w.requeue(ctx, id)
		}
	}
	if len(evaluations) == 0 {
		return
	}

	if err := w.store.UpsertBatch(ctx, evaluations); err != nil {
		w.log.Warn().Err(err).Msg("Bulk evaluation upsert failed, using fallback")

		for i := range evaluations {
			ev := &evaluations[i]
			if err := w.store.Upsert(ctx, ev); err != nil {
				w.log.Error().Err(err).Str("session_id", ev.SessionID.String()).Msg("Upsert failed, requeueing")
				w.requeue(ctx, ev.SessionID)
			}
		}
		return
	}

	w.log.Info().Int("count", len(evaluations)).Msg("Evaluations stored")
}

func (w *ScoringWorker) requeue(ctx context.Context, id uuid.UUID) {
	if err := w.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, id.String()).Err(); err != nil {
		w.log.Error().Err(err).Msg("Requeue failed")
	}
}

// drain scores what is left in the queue before shutdown, one pass only.
func (w *ScoringWorker) drain(ctx context.Context) {
	n, err := w.rdb.LLen(ctx, config.WorkerKey.PersistReportsQueue).Result()
	if err != nil || n == 0 {
		return
	}

	batch := make([]uuid.UUID, 0, n)
	for range n {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistReportsQueue).Result()
		if err != nil {
			break
		}
		if id, err := uuid.Parse(raw); err == nil {
			batch = append(batch, id)
		}
	}
	w.flushSafe(ctx, batch)
	w.log.Info().Int("count", len(batch)).Msg("Drained remaining sessions")
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, scoring.ErrEmptyReport) ||
		errors.Is(err, service.ErrSessionNotFound) ||
		errors.Is(err, service.ErrSessionNotCompleted)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
