package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AutosaveBatchSize    = 100
	AutosaveBatchTimeout = 2 * time.Second
	AutosavePollTimeout  = 1 * time.Second
)

// ResponseWriter persists answers. Satisfied by repository.ResponseRepository.
type ResponseWriter interface {
	Upsert(ctx context.Context, resp *model.TestResponse) error
	UpsertBatch(ctx context.Context, batch []model.TestResponse) error
}

// AutosaveWorker consumes persist_responses_queue and upserts the answers
// autosaved over WebSocket into PostgreSQL.
type AutosaveWorker struct {
	store ResponseWriter
	rdb   *redis.Client
	log   zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(store ResponseWriter, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		store:        store,
		rdb:          rdb,
		log:          log.With().Str("component", "autosave_worker").Logger(),
		batchSize:    AutosaveBatchSize,
		batchTimeout: AutosaveBatchTimeout,
		pollTimeout:  AutosavePollTimeout,
	}
}

// Start begins the worker loop. Call in a goroutine; it returns once ctx is
// cancelled and the queue has been drained.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	batch := make([]model.TestResponse, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {
			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.flush(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, w.pollTimeout, config.WorkerKey.PersistResponsesQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			if resp, ok := w.decode(item[1]); ok {
				batch = append(batch, resp)
			}
		}
	}
}

func (w *AutosaveWorker) decode(raw string) (model.TestResponse, bool) {
	var resp model.TestResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return resp, false
	}
	return resp, true
}

// flush writes a batch in one statement, falling back to row-by-row upserts.
// Rows that still fail are pushed back to the queue, except those referencing
// an unknown question which can never succeed.
func (w *AutosaveWorker) flush(ctx context.Context, batch []model.TestResponse) {
	if len(batch) == 0 {
		return
	}

	err := w.store.UpsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Persisted autosaved answers")
		return
	}
	w.log.Warn().Err(err).Msg("Bulk upsert failed, using fallback")

	for i := range batch {
		resp := &batch[i]
		err := w.store.Upsert(ctx, resp)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrForeignKey):
			w.log.Error().Err(err).
				Str("session_id", resp.SessionID.String()).
				Str("question_id", resp.QuestionID).
				Msg("Dropping answer")
		default:
			w.log.Error().Err(err).
				Str("session_id", resp.SessionID.String()).
				Msg("Upsert failed, requeueing")
			w.requeue(ctx, resp)
		}
	}
}

func (w *AutosaveWorker) requeue(ctx context.Context, resp *model.TestResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := w.rdb.RPush(ctx, config.WorkerKey.PersistResponsesQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Msg("Requeue failed")
	}
}

// drain persists what is left in the queue before shutdown. It stops at the
// first failed flush so requeued rows are not popped again.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		batch := make([]model.TestResponse, 0, w.batchSize)
		for len(batch) < w.batchSize {
			raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistResponsesQueue).Result()
			if err != nil {
				break
			}
			if resp, ok := w.decode(raw); ok {
				batch = append(batch, resp)
			}
		}
		if len(batch) == 0 {
			break
		}

		if err := w.store.UpsertBatch(ctx, batch); err != nil {
			w.flush(ctx, batch)
			break
		}
		drained += len(batch)
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
