package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// progressHistoryLimit caps how many completed sessions feed a progress view.
const progressHistoryLimit = 10

// reportFillTimeout bounds a shared report computation.
const reportFillTimeout = 15 * time.Second

// AnalysisService builds session reports, narrative analyses and student progress.
type AnalysisService struct {
	sessionRepo    SessionStore
	studentRepo    StudentStore
	responseRepo   ResponseStore
	evaluationRepo EvaluationReader
	catalog        *questionnaire.Catalog
	rdb            *redis.Client
	cacheTTL       time.Duration
	sf             singleflight.Group
	log            zerolog.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	sessionRepo SessionStore,
	studentRepo StudentStore,
	responseRepo ResponseStore,
	evaluationRepo EvaluationReader,
	catalog *questionnaire.Catalog,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		sessionRepo:    sessionRepo,
		studentRepo:    studentRepo,
		responseRepo:   responseRepo,
		evaluationRepo: evaluationRepo,
		catalog:        catalog,
		rdb:            rdb,
		cacheTTL:       cacheTTL,
		log:            log.With().Str("component", "analysis_service").Logger(),
	}
}

// Report returns the analysis report of a session.
// Reports of completed sessions are cached; open sessions are always recomputed.
func (s *AnalysisService) Report(ctx context.Context, id uuid.UUID) (*model.SessionReport, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reportFor(ctx, sess)
}

// Analysis returns the narrative reading of a session report.
func (s *AnalysisService) Analysis(ctx context.Context, id uuid.UUID) (*model.SessionAnalysis, error) {
	rep, err := s.Report(ctx, id)
	if err != nil {
		return nil, err
	}

	text, err := scoring.GenerateAnalysis(rep.Report.TestScores)
	if err != nil {
		return nil, err
	}

	return &model.SessionAnalysis{
		SessionID:    id,
		OverallLevel: rep.Report.OverallLevel,
		Analysis:     text,
	}, nil
}

// Progress returns the evolution of a student over their latest completed sessions.
// Sessions without any answer are left out of the history.
func (s *AnalysisService) Progress(ctx context.Context, studentID int) (*model.StudentProgress, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	sessions, err := s.sessionRepo.ListByStudent(ctx, studentID, model.SessionStatusCompleted, progressHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	reports := make([]*model.SessionReport, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range sessions {
		g.Go(func() error {
			rep, err := s.reportFor(gctx, &sessions[i])
			if errors.Is(err, scoring.ErrEmptyReport) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("session %s: %w", sessions[i].ID, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &model.StudentProgress{StudentID: studentID, SessionIDs: []uuid.UUID{}}
	history := make([]scoring.AnalysisReport, 0, len(reports))
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		out.SessionIDs = append(out.SessionIDs, rep.SessionID)
		history = append(history, rep.Report)
	}
	out.Progress = scoring.ComputeProgress(history)
	return out, nil
}

// Evaluation recomputes the persisted form of a completed session's report.
func (s *AnalysisService) Evaluation(ctx context.Context, id uuid.UUID) (*model.Evaluation, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionStatusCompleted {
		return nil, ErrSessionNotCompleted
	}

	rep, err := s.build(ctx, sess)
	if err != nil {
		return nil, err
	}
	ev := rep.ToEvaluation(sess.ReferenceDate())
	return &ev, nil
}

func (s *AnalysisService) session(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

func (s *AnalysisService) reportFor(ctx context.Context, sess *model.TestSession) (*model.SessionReport, error) {
	if sess.Status != model.SessionStatusCompleted {
		return s.build(ctx, sess)
	}

	key := config.CacheKey.SessionReportKey(sess.ID.String())
	cached, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rep model.SessionReport
		if err := json.Unmarshal(cached, &rep); err == nil {
			return &rep, nil
		}
		s.log.Warn().Str("session_id", sess.ID.String()).Msg("Discarding undecodable cached report")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Report cache read failed")
	}

	// The shared fill is detached from the caller; each caller waits on its own ctx.
	ch := s.sf.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportFillTimeout)
		defer cancel()

		rep, err := s.stored(fctx, sess)
		if errors.Is(err, repository.ErrNotFound) {
			rep, err = s.build(fctx, sess)
		}
		if err != nil {
			return nil, err
		}

		if payload, err := json.Marshal(rep); err == nil {
			if err := s.rdb.Set(fctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Report cache write failed")
			}
		}
		return rep, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.SessionReport), nil
	}
}

// stored loads the report from the evaluations table.
func (s *AnalysisService) stored(ctx context.Context, sess *model.TestSession) (*model.SessionReport, error) {
	ev, err := s.evaluationRepo.GetBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &model.SessionReport{
		SessionID:           sess.ID,
		StudentID:           sess.StudentID,
		Status:              sess.Status,
		Report:              ev.DetailedResults,
		NextEvaluationLabel: scoring.FormatDateFR(ev.DetailedResults.NextEvaluationDate),
	}, nil
}

// build computes the report from the recorded answers, grouped by domain in catalog order.
func (s *AnalysisService) build(ctx context.Context, sess *model.TestSession) (*model.SessionReport, error) {
	answers, err := sessionAnswers(ctx, s.rdb, s.responseRepo, sess.ID)
	if err != nil {
		return nil, err
	}

	groups, unknown := s.catalog.Group(toScoringAnswers(answers))
	if len(unknown) > 0 {
		s.log.Warn().
			Str("session_id", sess.ID.String()).
			Strs("question_ids", unknown).
			Msg("Ignoring answers to unknown questions")
	}

	report, err := scoring.BuildSessionReport(groups, sess.ReferenceDate())
	if err != nil {
		return nil, err
	}

	return &model.SessionReport{
		SessionID:           sess.ID,
		StudentID:           sess.StudentID,
		Status:              sess.Status,
		Report:              report,
		NextEvaluationLabel: scoring.FormatDateFR(report.NextEvaluationDate),
	}, nil
}
