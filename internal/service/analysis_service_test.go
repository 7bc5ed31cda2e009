package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/service/servicetest"
)

type analysisFixture struct {
	svc         *service.AnalysisService
	sessions    *servicetest.Sessions
	responses   *servicetest.Responses
	evaluations *servicetest.Evaluations
}

func newAnalysisFixture(t *testing.T) (*analysisFixture, func(key string) bool) {
	t.Helper()
	mr, rdb := newRedis(t)
	f := &analysisFixture{
		sessions:    servicetest.NewSessions(),
		responses:   servicetest.NewResponses(),
		evaluations: servicetest.NewEvaluations(),
	}
	f.svc = service.NewAnalysisService(f.sessions, servicetest.NewStudents("Léa"), f.responses, f.evaluations,
		questionnaire.MustLoad(), rdb, time.Minute, nopLog)
	return f, mr.Exists
}

// seed stores a session of student 1 with the given answers keyed by question id.
func (f *analysisFixture) seed(t *testing.T, status model.SessionStatus, created time.Time, answers map[string]float64) model.TestSession {
	t.Helper()
	end := created.Add(30 * time.Minute)
	sess := model.TestSession{
		ID:          uuid.New(),
		StudentID:   1,
		EvaluatorID: 1,
		Status:      status,
		StartTime:   &created,
		CreatedAt:   created,
	}
	if status == model.SessionStatusCompleted {
		sess.EndTime = &end
	}
	f.sessions.Put(sess)

	var batch []model.TestResponse
	for q, s := range answers {
		batch = append(batch, model.TestResponse{SessionID: sess.ID, QuestionID: q, AnswerScore: s, ResponseTime: created})
	}
	if err := f.responses.UpsertBatch(context.Background(), batch); err != nil {
		t.Fatalf("seed responses: %v", err)
	}
	return sess
}

func TestAnalysisService_ReportCachesCompletedSessions(t *testing.T) {
	ctx := context.Background()
	f, exists := newAnalysisFixture(t)

	created := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	sess := f.seed(t, model.SessionStatusCompleted, created, map[string]float64{
		"inhibition-01":            3,
		"inhibition-02":            3,
		"memoire-de-travail-01":    0,
		"flexibilite-cognitive-01": 1,
	})

	rep, err := f.svc.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rep.Report.TestScores) != 3 {
		t.Fatalf("expected 3 domains, got %d", len(rep.Report.TestScores))
	}
	// Catalog order, not answer order.
	names := []string{rep.Report.TestScores[0].TestName, rep.Report.TestScores[1].TestName, rep.Report.TestScores[2].TestName}
	if names[0] != "Inhibition" || !strings.HasPrefix(strings.ToLower(names[2]), "m") {
		t.Errorf("unexpected domain order %v", names)
	}
	if rep.NextEvaluationLabel != "15 avril 2025" {
		t.Errorf("expected next evaluation three months after the session, got %q", rep.NextEvaluationLabel)
	}
	if !exists(config.CacheKey.SessionReportKey(sess.ID.String())) {
		t.Fatal("expected report to be cached")
	}

	// Later writes do not affect the cached report of a completed session.
	_ = f.responses.UpsertBatch(ctx, []model.TestResponse{{SessionID: sess.ID, QuestionID: "inhibition-03", AnswerScore: 0, ResponseTime: created}})
	readsBefore := f.evaluations.Reads()
	again, err := f.svc.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("report again: %v", err)
	}
	if again.Report.OverallScore != rep.Report.OverallScore {
		t.Errorf("expected cached overall score %v, got %v", rep.Report.OverallScore, again.Report.OverallScore)
	}
	if f.evaluations.Reads() != readsBefore {
		t.Error("expected cache hit without reading evaluations")
	}
}

func TestAnalysisService_ReportPrefersStoredEvaluation(t *testing.T) {
	ctx := context.Background()
	f, _ := newAnalysisFixture(t)

	sess := f.seed(t, model.SessionStatusCompleted, time.Now().Add(-time.Hour), map[string]float64{"inhibition-01": 1})
	stored := scoring.AnalysisReport{
		TestScores:         []scoring.TestScores{{TestName: "Inhibition", TotalScore: 3, MaxScore: 3, Level: scoring.LevelExcellent}},
		OverallScore:       100,
		OverallLevel:       scoring.BandGood,
		NextEvaluationDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	f.evaluations.Put(model.Evaluation{SessionID: sess.ID, DetailedResults: stored})

	rep, err := f.svc.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Report.OverallScore != 100 || rep.NextEvaluationLabel != "02 janvier 2026" {
		t.Errorf("expected stored evaluation, got %+v", rep)
	}
}

func TestAnalysisService_OpenSessionsAreRecomputed(t *testing.T) {
	ctx := context.Background()
	f, exists := newAnalysisFixture(t)

	sess := f.seed(t, model.SessionStatusInProgress, time.Now(), map[string]float64{"inhibition-01": 1})

	first, err := f.svc.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	_ = f.responses.UpsertBatch(ctx, []model.TestResponse{{SessionID: sess.ID, QuestionID: "inhibition-02", AnswerScore: 3, ResponseTime: time.Now()}})
	second, err := f.svc.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if first.Report.OverallScore == second.Report.OverallScore {
		t.Error("expected open session report to follow new answers")
	}
	if exists(config.CacheKey.SessionReportKey(sess.ID.String())) {
		t.Error("open session report must not be cached")
	}

	if _, err := f.svc.Evaluation(ctx, sess.ID); !errors.Is(err, service.ErrSessionNotCompleted) {
		t.Errorf("expected ErrSessionNotCompleted, got %v", err)
	}
}

func TestAnalysisService_EmptySession(t *testing.T) {
	ctx := context.Background()
	f, _ := newAnalysisFixture(t)

	sess := f.seed(t, model.SessionStatusInProgress, time.Now(), nil)
	if _, err := f.svc.Report(ctx, sess.ID); !errors.Is(err, scoring.ErrEmptyReport) {
		t.Errorf("expected ErrEmptyReport, got %v", err)
	}
	if _, err := f.svc.Report(ctx, uuid.New()); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAnalysisService_Progress(t *testing.T) {
	ctx := context.Background()
	f, _ := newAnalysisFixture(t)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	older := f.seed(t, model.SessionStatusCompleted, base, map[string]float64{"inhibition-01": 1, "inhibition-02": 1})
	newer := f.seed(t, model.SessionStatusCompleted, base.AddDate(0, 3, 0), map[string]float64{"inhibition-01": 2, "inhibition-02": 2})
	f.seed(t, model.SessionStatusCompleted, base.AddDate(0, 4, 0), nil)
	f.seed(t, model.SessionStatusInProgress, base.AddDate(0, 5, 0), map[string]float64{"inhibition-01": 3})

	p, err := f.svc.Progress(ctx, 1)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(p.History) != 2 || len(p.SessionIDs) != 2 {
		t.Fatalf("expected two reports in history, got %d", len(p.History))
	}
	if p.SessionIDs[0] != newer.ID || p.SessionIDs[1] != older.ID {
		t.Errorf("expected newest first, got %v", p.SessionIDs)
	}
	if p.ProgressPercentage != 100 {
		t.Errorf("expected 100%% progress, got %v", p.ProgressPercentage)
	}

	if _, err := f.svc.Progress(ctx, 99); !errors.Is(err, service.ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestAnalysisService_AnalysisAndEvaluation(t *testing.T) {
	ctx := context.Background()
	f, _ := newAnalysisFixture(t)

	sess := f.seed(t, model.SessionStatusCompleted, time.Now().Add(-time.Hour), map[string]float64{
		"inhibition-01": 3, "inhibition-02": 3, "inhibition-03": 2,
	})

	a, err := f.svc.Analysis(ctx, sess.ID)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if a.SessionID != sess.ID || !strings.Contains(a.Analysis, "Inhibition") {
		t.Errorf("unexpected analysis %+v", a)
	}

	ev, err := f.svc.Evaluation(ctx, sess.ID)
	if err != nil {
		t.Fatalf("evaluation: %v", err)
	}
	if ev.SessionID != sess.ID || ev.StudentID != 1 || !ev.CompletedAt.Equal(*sess.EndTime) {
		t.Errorf("unexpected evaluation %+v", ev)
	}
	if ev.OverallScore != ev.DetailedResults.OverallScore || ev.OverallLevel != ev.DetailedResults.OverallLevel {
		t.Error("evaluation summary must mirror its detailed results")
	}
}

// gatedEvaluations blocks GetBySession until release is closed or the call ctx ends.
type gatedEvaluations struct {
	*servicetest.Evaluations
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedEvaluations) GetBySession(ctx context.Context, id uuid.UUID) (*model.Evaluation, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return g.Evaluations.GetBySession(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestAnalysisService_CancelledCallerDoesNotFailSharedReport(t *testing.T) {
	_, rdb := newRedis(t)
	sessions := servicetest.NewSessions()
	responses := servicetest.NewResponses()
	evals := &gatedEvaluations{
		Evaluations: servicetest.NewEvaluations(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := service.NewAnalysisService(sessions, servicetest.NewStudents("Léa"), responses, evals,
		questionnaire.MustLoad(), rdb, time.Minute, nopLog)

	f := &analysisFixture{svc: svc, sessions: sessions, responses: responses}
	sess := f.seed(t, model.SessionStatusCompleted, time.Now().Add(-time.Hour), map[string]float64{"inhibition-01": 2})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Report(ctxA, sess.ID)
		errA <- err
	}()
	<-evals.entered

	type result struct {
		rep *model.SessionReport
		err error
	}
	resB := make(chan result, 1)
	go func() {
		rep, err := svc.Report(context.Background(), sess.ID)
		resB <- result{rep, err}
	}()

	cancelA()
	select {
	case err := <-errA:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected cancelled caller to get context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	time.Sleep(20 * time.Millisecond)
	close(evals.release)

	select {
	case r := <-resB:
		if r.err != nil {
			t.Fatalf("expected second caller to get the report, got %v", r.err)
		}
		if r.rep.SessionID != sess.ID || len(r.rep.Report.TestScores) != 1 {
			t.Errorf("unexpected report %+v", r.rep)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
}
