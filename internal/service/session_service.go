package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// sessionClosedTTL outlives any autosave that read the session before it closed.
const sessionClosedTTL = 24 * time.Hour

// SessionService drives the lifecycle of test sessions and records their answers.
type SessionService struct {
	sessionRepo  SessionStore
	studentRepo  StudentStore
	responseRepo ResponseStore
	catalog      *questionnaire.Catalog
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo SessionStore,
	studentRepo StudentStore,
	responseRepo ResponseStore,
	catalog *questionnaire.Catalog,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		studentRepo:  studentRepo,
		responseRepo: responseRepo,
		catalog:      catalog,
		rdb:          rdb,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

// Create opens a pending session for a student.
func (s *SessionService) Create(ctx context.Context, studentID, evaluatorID int) (*model.TestSession, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	sess := &model.TestSession{StudentID: studentID, EvaluatorID: evaluatorID}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Int("student_id", studentID).
		Int("evaluator_id", evaluatorID).
		Msg("Session created")
	return sess, nil
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

// ListByStudent returns the sessions of a student, newest first.
func (s *SessionService) ListByStudent(ctx context.Context, studentID int, status model.SessionStatus, limit int) ([]model.TestSession, error) {
	sessions, err := s.sessionRepo.ListByStudent(ctx, studentID, status, limit)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.TestSession{}
	}
	return sessions, nil
}

// State returns a session with the answers recorded so far.
func (s *SessionService) State(ctx context.Context, id uuid.UUID) (*model.SessionState, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := sessionAnswers(ctx, s.rdb, s.responseRepo, id)
	if err != nil {
		return nil, err
	}

	return &model.SessionState{
		Session:       sess,
		Answers:       answers,
		AnsweredCount: len(answers),
		QuestionCount: s.catalog.QuestionCount(),
	}, nil
}

// Start moves a pending session to in_progress.
func (s *SessionService) Start(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	sess, err := s.transition(ctx, id, []model.SessionStatus{model.SessionStatusPending}, model.SessionStatusInProgress)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("session_id", id.String()).Msg("Session started")
	return sess, nil
}

// RecordResponse stores an answer synchronously.
func (s *SessionService) RecordResponse(ctx context.Context, id uuid.UUID, req model.RecordResponseRequest) (*model.TestResponse, error) {
	if req.AnswerScore == nil {
		return nil, ErrInvalidScore
	}
	resp, err := s.newResponse(ctx, id, req.QuestionID, *req.AnswerScore, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.responseRepo.Upsert(ctx, resp); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrUnknownQuestion
		}
		return nil, fmt.Errorf("store response: %w", err)
	}
	return resp, nil
}

// Autosave buffers an answer in Redis and queues it for the autosave worker.
func (s *SessionService) Autosave(ctx context.Context, id uuid.UUID, questionID string, score float64, notes string) (*model.TestResponse, error) {
	resp, err := s.newResponse(ctx, id, questionID, score, notes)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	answersKey := config.CacheKey.SessionAnswersKey(id.String())
	closedKey := config.CacheKey.SessionClosedKey(id.String())
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, closedKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrSessionNotInProgress
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, answersKey, questionID, payload)
			pipe.RPush(ctx, config.WorkerKey.PersistResponsesQueue, payload)
			return nil
		})
		return err
	}, closedKey)
	switch {
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, ErrSessionNotInProgress):
		return nil, ErrSessionNotInProgress
	case err != nil:
		return nil, fmt.Errorf("autosave answer: %w", err)
	}
	return resp, nil
}

// Complete closes the session, persists its buffered answers and queues its evaluation.
// The session leaves in_progress before its autosave buffer is taken.
func (s *SessionService) Complete(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	sess, err := s.transition(ctx, id, []model.SessionStatus{model.SessionStatusInProgress}, model.SessionStatusCompleted)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("session_id", id.String()).Logger()

	buffered, err := s.takeBuffer(ctx, id, model.SessionStatusCompleted)
	if err != nil {
		// The hash is left in place and still feeds the report.
		log.Error().Err(err).Msg("Failed to take autosaved answers")
	}
	if len(buffered) > 0 {
		if err := s.responseRepo.UpsertBatch(ctx, buffered); err != nil {
			log.Error().Err(err).Int("answers", len(buffered)).Msg("Failed to flush answers, restoring buffer")
			s.restoreBuffer(ctx, id, buffered)
		}
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, id.String()).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to queue evaluation")
	}

	log.Info().Int("flushed", len(buffered)).Msg("Session completed")
	return sess, nil
}

// Cancel abandons a pending or in-progress session and drops its buffered answers.
func (s *SessionService) Cancel(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	sess, err := s.transition(ctx, id,
		[]model.SessionStatus{model.SessionStatusPending, model.SessionStatusInProgress},
		model.SessionStatusCancelled,
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.takeBuffer(ctx, id, model.SessionStatusCancelled); err != nil {
		s.log.Warn().Err(err).Str("session_id", id.String()).Msg("Failed to drop autosaved answers")
	}
	s.log.Info().Str("session_id", id.String()).Msg("Session cancelled")
	return sess, nil
}

// takeBuffer marks the session closed for autosave and reads then drops its answer
// hash and cached report in one transaction.
func (s *SessionService) takeBuffer(ctx context.Context, id uuid.UUID, status model.SessionStatus) ([]model.TestResponse, error) {
	answersKey := config.CacheKey.SessionAnswersKey(id.String())

	var all *redis.MapStringStringCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.SessionClosedKey(id.String()), string(status), sessionClosedTTL)
		all = pipe.HGetAll(ctx, answersKey)
		pipe.Del(ctx, answersKey, config.CacheKey.SessionReportKey(id.String()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("take autosaved answers: %w", err)
	}
	return decodeAnswers(all.Val()), nil
}

// restoreBuffer puts taken answers back into the hash so reads still see them.
// The persist queue already holds a copy of each for the autosave worker.
func (s *SessionService) restoreBuffer(ctx context.Context, id uuid.UUID, answers []model.TestResponse) {
	values := make(map[string]any, len(answers))
	for _, a := range answers {
		payload, err := json.Marshal(a)
		if err != nil {
			continue
		}
		values[a.QuestionID] = payload
	}
	if err := s.rdb.HSet(ctx, config.CacheKey.SessionAnswersKey(id.String()), values).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to restore autosaved answers")
	}
}

// newResponse validates an answer against the session state and the questionnaire.
func (s *SessionService) newResponse(ctx context.Context, id uuid.UUID, questionID string, score float64, notes string) (*model.TestResponse, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotInProgress
	}
	if _, _, ok := s.catalog.Question(questionID); !ok {
		return nil, ErrUnknownQuestion
	}
	if math.IsNaN(score) || score < 0 || score > scoring.MaxAnswerScore {
		return nil, ErrInvalidScore
	}

	return &model.TestResponse{
		SessionID:    id,
		QuestionID:   questionID,
		AnswerScore:  score,
		Notes:        notes,
		ResponseTime: time.Now().UTC(),
	}, nil
}

// transition applies a status change, telling a missing session apart from a refused move.
func (s *SessionService) transition(ctx context.Context, id uuid.UUID, from []model.SessionStatus, next model.SessionStatus) (*model.TestSession, error) {
	sess, err := s.sessionRepo.Transition(ctx, id, from, next, time.Now().UTC())
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("transition session: %w", err)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrInvalidTransition
}
