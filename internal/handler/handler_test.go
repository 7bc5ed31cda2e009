package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/handler"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/monitor"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/router"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/service/servicetest"
	"github.com/neuronalfit/assessment-backend/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

type staticProbe struct {
	name string
	err  error
}

func (p staticProbe) Name() string                { return p.name }
func (p staticProbe) Check(context.Context) error { return p.err }

type testEnv struct {
	router    *gin.Engine
	responses *servicetest.Responses
	rdb       *redis.Client
	evalToken string
	adminTok  string
}

func newEnv(t *testing.T, probes ...monitor.Probe) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		GinMode:        gin.TestMode,
		JWTSecret:      "handler-secret",
		JWTExpiry:      time.Hour,
		BcryptCost:     4,
		ReportCacheTTL: time.Minute,
	}
	log := zerolog.Nop()
	catalog := questionnaire.MustLoad()

	students := servicetest.NewStudents()
	sessions := servicetest.NewSessions()
	responses := servicetest.NewResponses()
	evaluations := servicetest.NewEvaluations()

	authService := service.NewAuthService(cfg)
	evaluatorService := service.NewEvaluatorService(&servicetest.Evaluators{}, authService, log)
	studentService := service.NewStudentService(students)
	sessionService := service.NewSessionService(sessions, students, responses, catalog, rdb, log)
	analysisService := service.NewAnalysisService(sessions, students, responses, evaluations, catalog, rdb, cfg.ReportCacheTTL, log)

	if len(probes) == 0 {
		probes = []monitor.Probe{staticProbe{name: "database"}, staticProbe{name: "redis"}}
	}
	mon := monitor.New(time.Minute, log, probes)

	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(evaluatorService),
		Student:       handler.NewStudentHandler(studentService, sessionService),
		Session:       handler.NewSessionHandler(sessionService),
		Analysis:      handler.NewAnalysisHandler(analysisService),
		Questionnaire: handler.NewQuestionnaireHandler(catalog),
		System:        handler.NewSystemHandler(mon),
		WS:            handler.NewWSHandler(sessionService, log, nil),
	}

	env := &testEnv{
		router:    router.SetupRouter(ctx, authService, handlers, cfg),
		responses: responses,
		rdb:       rdb,
	}

	if _, err := evaluatorService.Create(ctx, "Claire Martin", "claire@example.com", "motdepasse", model.RoleEvaluator); err != nil {
		t.Fatalf("seed evaluator: %v", err)
	}
	if _, err := evaluatorService.Create(ctx, "Admin", "admin@example.com", "motdepasse", model.RoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	env.evalToken = env.login(t, "claire@example.com")
	env.adminTok = env.login(t, "admin@example.com")
	return env
}

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, env
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Email: email, Password: "motdepasse"})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d", email, code)
	}
	var resp model.LoginResponse
	mustDecode(t, env.Data, &resp)
	return resp.Token
}

func mustDecode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
}

func (e *testEnv) createStudent(t *testing.T) model.Student {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/v1/students", e.evalToken,
		model.StudentRequest{FullName: "Léa Dubois", DateOfBirth: "2014-09-12", GradeLevel: "CM2"})
	if code != http.StatusCreated {
		t.Fatalf("create student: status %d", code)
	}
	var out struct {
		Student model.Student `json:"student"`
	}
	mustDecode(t, env.Data, &out)
	return out.Student
}

func (e *testEnv) startSession(t *testing.T, studentID int) model.TestSession {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/v1/sessions", e.evalToken, model.CreateSessionRequest{StudentID: studentID})
	if code != http.StatusCreated {
		t.Fatalf("create session: status %d", code)
	}
	var out struct {
		Session model.TestSession `json:"session"`
	}
	mustDecode(t, env.Data, &out)

	if code, _ := e.do(t, http.MethodPost, "/api/v1/sessions/"+out.Session.ID.String()+"/start", e.evalToken, nil); code != http.StatusOK {
		t.Fatalf("start session: status %d", code)
	}
	return out.Session
}

func TestAuth(t *testing.T) {
	env := newEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Email: "claire@example.com", Password: "mauvais-mdp"})
	if code != http.StatusUnauthorized || body.Error.Code != response.ErrInvalidCredentials {
		t.Errorf("expected 401 INVALID_CREDENTIALS, got %d %+v", code, body.Error)
	}

	code, body = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "pas-un-email"})
	if code != http.StatusBadRequest || body.Error.Code != response.ErrValidation || body.Error.Fields["email"] == "" {
		t.Errorf("expected field errors, got %d %+v", code, body.Error)
	}

	code, body = env.do(t, http.MethodGet, "/api/v1/auth/me", env.evalToken, nil)
	if code != http.StatusOK || !strings.Contains(string(body.Data), `"role":"evaluator"`) {
		t.Errorf("unexpected /me response %d %s", code, body.Data)
	}

	if code, _ := env.do(t, http.MethodGet, "/api/v1/students", "", nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", code)
	}
}

func TestStudents(t *testing.T) {
	env := newEnv(t)
	st := env.createStudent(t)

	code, body := env.do(t, http.MethodGet, "/api/v1/students?page=1&per_page=5", env.evalToken, nil)
	if code != http.StatusOK || body.Pagination == nil || body.Pagination.TotalItems != 1 {
		t.Fatalf("unexpected list response %d %+v", code, body.Pagination)
	}

	code, body = env.do(t, http.MethodPut, "/api/v1/students/"+strconv.Itoa(st.ID), env.evalToken,
		model.StudentRequest{FullName: "Léa Dubois", DateOfBirth: "2014-09-12", GradeLevel: "6e"})
	if code != http.StatusOK || !strings.Contains(string(body.Data), `"grade_level":"6e"`) {
		t.Errorf("unexpected update response %d %s", code, body.Data)
	}

	code, body = env.do(t, http.MethodPost, "/api/v1/students", env.evalToken,
		model.StudentRequest{FullName: "Léa", DateOfBirth: "12/09/2014", GradeLevel: "CM2"})
	if code != http.StatusBadRequest || body.Error.Fields["date_of_birth"] == "" {
		t.Errorf("expected date_of_birth error, got %d %+v", code, body.Error)
	}

	if code, _ := env.do(t, http.MethodGet, "/api/v1/students/999", env.evalToken, nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if code, _ := env.do(t, http.MethodGet, "/api/v1/students/abc", env.evalToken, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestSessionFlowAndAnalysis(t *testing.T) {
	env := newEnv(t)
	st := env.createStudent(t)
	sess := env.startSession(t, st.ID)
	base := "/api/v1/sessions/" + sess.ID.String()

	for _, q := range []string{"inhibition-01", "inhibition-02", "memoire-de-travail-01"} {
		code, body := env.do(t, http.MethodPost, base+"/responses", env.evalToken, map[string]any{"question_id": q, "answer_score": 2})
		if code != http.StatusOK {
			t.Fatalf("record %s: %d %+v", q, code, body.Error)
		}
	}

	code, body := env.do(t, http.MethodPost, base+"/responses", env.evalToken, map[string]any{"question_id": "inhibition-03", "answer_score": 7})
	if code != http.StatusBadRequest || body.Error.Code != response.ErrValidation || body.Error.Fields["answer_score"] == "" {
		t.Errorf("expected answer_score validation error, got %d %+v", code, body.Error)
	}
	code, body = env.do(t, http.MethodPost, base+"/responses", env.evalToken, map[string]any{"question_id": "inconnue-01", "answer_score": 1})
	if code != http.StatusBadRequest || body.Error.Code != response.ErrUnknownQuestion {
		t.Errorf("expected UNKNOWN_QUESTION, got %d %+v", code, body.Error)
	}

	code, body = env.do(t, http.MethodGet, base, env.evalToken, nil)
	var state model.SessionState
	mustDecode(t, body.Data, &state)
	if code != http.StatusOK || state.AnsweredCount != 3 {
		t.Errorf("expected 3 answers in state, got %d (%d)", state.AnsweredCount, code)
	}

	if code, _ := env.do(t, http.MethodPost, base+"/complete", env.evalToken, nil); code != http.StatusOK {
		t.Fatalf("complete: %d", code)
	}
	code, body = env.do(t, http.MethodPost, base+"/responses", env.evalToken, map[string]any{"question_id": "inhibition-03", "answer_score": 1})
	if code != http.StatusConflict || body.Error.Code != response.ErrSessionNotInProgress {
		t.Errorf("expected SESSION_NOT_IN_PROGRESS, got %d %+v", code, body.Error)
	}
	if code, body := env.do(t, http.MethodPost, base+"/cancel", env.evalToken, nil); code != http.StatusConflict || body.Error.Code != response.ErrInvalidTransition {
		t.Errorf("expected INVALID_SESSION_TRANSITION, got %d", code)
	}

	code, body = env.do(t, http.MethodGet, base+"/report", env.evalToken, nil)
	if code != http.StatusOK {
		t.Fatalf("report: %d %+v", code, body.Error)
	}
	var report model.SessionReport
	mustDecode(t, body.Data, &report)
	if len(report.Report.TestScores) != 2 || report.Report.OverallScore == 0 || report.NextEvaluationLabel == "" {
		t.Errorf("unexpected report %+v", report)
	}

	code, body = env.do(t, http.MethodGet, base+"/analysis", env.evalToken, nil)
	if code != http.StatusOK || !strings.Contains(string(body.Data), "Analyse globale") {
		t.Errorf("unexpected analysis %d %s", code, body.Data)
	}

	code, body = env.do(t, http.MethodGet, "/api/v1/students/"+strconv.Itoa(st.ID)+"/progress", env.evalToken, nil)
	var progress model.StudentProgress
	mustDecode(t, body.Data, &progress)
	if code != http.StatusOK || len(progress.History) != 1 || progress.ProgressPercentage != 0 {
		t.Errorf("unexpected progress %d %+v", code, progress)
	}

	code, body = env.do(t, http.MethodGet, "/api/v1/students/"+strconv.Itoa(st.ID)+"/sessions?status=completed", env.evalToken, nil)
	if code != http.StatusOK || !strings.Contains(string(body.Data), sess.ID.String()) {
		t.Errorf("expected completed session listed, got %d %s", code, body.Data)
	}
}

func TestEmptyReport(t *testing.T) {
	env := newEnv(t)
	sess := env.startSession(t, env.createStudent(t).ID)

	code, body := env.do(t, http.MethodGet, "/api/v1/sessions/"+sess.ID.String()+"/report", env.evalToken, nil)
	if code != http.StatusUnprocessableEntity || body.Error.Code != response.ErrEmptyReport {
		t.Errorf("expected EMPTY_REPORT, got %d %+v", code, body.Error)
	}
	if code, _ := env.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid/report", env.evalToken, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", code)
	}
}

func TestQuestionnaire(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/questionnaire", nil)
	req.Header.Set("Authorization", "Bearer "+env.evalToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") == "" {
		t.Fatalf("unexpected catalog response %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"question_count":77`) {
		t.Error("expected question count in catalog")
	}

	code, body := env.do(t, http.MethodGet, "/api/v1/questionnaire/domains/Inhibition", env.evalToken, nil)
	if code != http.StatusOK || !strings.Contains(string(body.Data), "inhibition-10") {
		t.Errorf("unexpected domain response %d", code)
	}
	if code, _ := env.do(t, http.MethodGet, "/api/v1/questionnaire/domains/astrologie", env.evalToken, nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestSystemStatus(t *testing.T) {
	env := newEnv(t, staticProbe{name: "database", err: errors.New("connection refused")}, staticProbe{name: "redis"})

	if code, body := env.do(t, http.MethodGet, "/api/v1/admin/system/status", env.evalToken, nil); code != http.StatusForbidden || body.Error.Code != response.ErrAdminAccessOnly {
		t.Errorf("expected 403 for evaluator, got %d", code)
	}

	code, body := env.do(t, http.MethodGet, "/api/v1/admin/system/status", env.adminTok, nil)
	if code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	var out struct {
		Status          monitor.Status `json:"status"`
		Recommendations []string       `json:"recommendations"`
	}
	mustDecode(t, body.Data, &out)
	if out.Status.Health != monitor.HealthDown || len(out.Recommendations) == 0 {
		t.Errorf("unexpected diagnostic %+v", out)
	}
	if !strings.Contains(out.Recommendations[0], "la base de données") {
		t.Errorf("unexpected first recommendation %q", out.Recommendations[0])
	}

	// Reading the status again serves the same round instead of sampling anew.
	for range 3 {
		_, body = env.do(t, http.MethodGet, "/api/v1/admin/system/status", env.adminTok, nil)
	}
	var again struct {
		Status monitor.Status `json:"status"`
	}
	mustDecode(t, body.Data, &again)
	if got := again.Status.Services["database"].ErrorCount; got != 1 {
		t.Errorf("expected one recorded database failure, got %d", got)
	}
	if !again.Status.LastCheck.Equal(out.Status.LastCheck) {
		t.Errorf("expected last check to stay at %v, got %v", out.Status.LastCheck, again.Status.LastCheck)
	}

	if code, _ := env.do(t, http.MethodGet, "/health", "", nil); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while the database is down, got %d", code)
	}
}

func TestSessionStream(t *testing.T) {
	env := newEnv(t)
	sess := env.startSession(t, env.createStudent(t).ID)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/sessions/" + sess.ID.String() + "/stream?token=" + env.evalToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func(want string) map[string]any {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %s: %v", want, err)
		}
		if msg["event"] != want {
			t.Fatalf("expected event %q, got %v", want, msg)
		}
		return msg
	}

	read("state")

	_ = conn.WriteJSON(map[string]any{"action": "ping"})
	read("pong")

	_ = conn.WriteJSON(map[string]any{"action": "answer", "question_id": "inhibition-01", "answer_score": 3})
	saved := read("saved")
	if data, _ := saved["data"].(map[string]any); data["answered_count"] != float64(1) {
		t.Errorf("unexpected saved payload %v", saved)
	}

	_ = conn.WriteJSON(map[string]any{"action": "answer", "question_id": "inhibition-01", "answer_score": 9})
	read("error")

	_ = conn.WriteJSON(map[string]any{"action": "submit"})
	read("completed")

	if got := env.responses.Count(sess.ID); got != 1 {
		t.Errorf("expected autosaved answer persisted on submit, got %d", got)
	}
	if n, _ := env.rdb.LLen(context.Background(), config.WorkerKey.PersistReportsQueue).Result(); n != 1 {
		t.Errorf("expected evaluation queued, got %d", n)
	}
}
