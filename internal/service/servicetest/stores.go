// Package servicetest provides in-memory stores for exercising services and handlers
// without a database.
package servicetest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/repository"
)

// ─── Students ───────────────────────────────────────────────────────

// Students is an in-memory student store.
type Students struct {
	mu   sync.Mutex
	rows map[int]*model.Student
	next int
}

// NewStudents creates a store holding one student per name, with ids from 1.
func NewStudents(names ...string) *Students {
	f := &Students{rows: map[int]*model.Student{}}
	for _, n := range names {
		_ = f.Create(context.Background(), &model.Student{FullName: n, GradeLevel: "CM1"})
	}
	return f
}

func (f *Students) GetByID(_ context.Context, id int) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *Students) ListPaginated(_ context.Context, limit, offset int) ([]model.Student, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []model.Student
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, *f.rows[ids[i]])
	}
	return out, len(ids), nil
}

func (f *Students) Create(_ context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	s.ID = f.next
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *Students) Update(_ context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

// ─── Evaluators ─────────────────────────────────────────────────────

// Evaluators is an in-memory evaluator store.
type Evaluators struct {
	Rows []*model.Evaluator
}

func (f *Evaluators) GetByEmail(_ context.Context, email string) (*model.Evaluator, error) {
	for _, e := range f.Rows {
		if strings.EqualFold(e.Email, email) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Evaluators) Create(_ context.Context, e *model.Evaluator) error {
	for _, existing := range f.Rows {
		if strings.EqualFold(existing.Email, e.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	e.ID = len(f.Rows) + 1
	e.CreatedAt = time.Now()
	cp := *e
	f.Rows = append(f.Rows, &cp)
	return nil
}

// ─── Sessions ───────────────────────────────────────────────────────

// Sessions is an in-memory session store applying the same transition rules as the
// SQL repository.
type Sessions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.TestSession
}

func NewSessions() *Sessions {
	return &Sessions{rows: map[uuid.UUID]*model.TestSession{}}
}

func (f *Sessions) Create(_ context.Context, s *model.TestSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.Status = model.SessionStatusPending
	s.CreatedAt = time.Now()
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *Sessions) GetByID(_ context.Context, id uuid.UUID) (*model.TestSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *Sessions) ListByStudent(_ context.Context, studentID int, status model.SessionStatus, limit int) ([]model.TestSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TestSession
	for _, s := range f.rows {
		if s.StudentID == studentID && (status == "" || s.Status == status) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Sessions) Transition(_ context.Context, id uuid.UUID, from []model.SessionStatus, next model.SessionStatus, at time.Time) (*model.TestSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || !slices.Contains(from, s.Status) {
		return nil, repository.ErrNotFound
	}
	s.Status = next
	switch next {
	case model.SessionStatusInProgress:
		s.StartTime = &at
	case model.SessionStatusCompleted, model.SessionStatusCancelled:
		s.EndTime = &at
	}
	cp := *s
	return &cp, nil
}

// Put stores a session as-is, for tests that need a specific state.
func (f *Sessions) Put(s model.TestSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = &s
}

// ─── Responses ──────────────────────────────────────────────────────

// Responses is an in-memory response store where the latest answer per question wins.
type Responses struct {
	mu   sync.Mutex
	rows map[uuid.UUID]map[string]model.TestResponse
}

func NewResponses() *Responses {
	return &Responses{rows: map[uuid.UUID]map[string]model.TestResponse{}}
}

func (f *Responses) upsert(resp model.TestResponse) {
	bySession, ok := f.rows[resp.SessionID]
	if !ok {
		bySession = map[string]model.TestResponse{}
		f.rows[resp.SessionID] = bySession
	}
	if prev, ok := bySession[resp.QuestionID]; ok && prev.ResponseTime.After(resp.ResponseTime) {
		return
	}
	bySession[resp.QuestionID] = resp
}

func (f *Responses) Upsert(_ context.Context, resp *model.TestResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp.ID = uuid.New()
	f.upsert(*resp)
	return nil
}

func (f *Responses) UpsertBatch(_ context.Context, batch []model.TestResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, resp := range batch {
		f.upsert(resp)
	}
	return nil
}

func (f *Responses) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.TestResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TestResponse
	for _, resp := range f.rows[sessionID] {
		out = append(out, resp)
	}
	return out, nil
}

// Count returns the number of stored answers of a session.
func (f *Responses) Count(sessionID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[sessionID])
}

// ─── Evaluations ────────────────────────────────────────────────────

// Evaluations is an in-memory evaluation store.
type Evaluations struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]model.Evaluation
	reads int
}

func NewEvaluations() *Evaluations {
	return &Evaluations{rows: map[uuid.UUID]model.Evaluation{}}
}

func (f *Evaluations) GetBySession(_ context.Context, sessionID uuid.UUID) (*model.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	ev, ok := f.rows[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ev, nil
}

func (f *Evaluations) Upsert(_ context.Context, ev *model.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(*ev)
	return nil
}

func (f *Evaluations) UpsertBatch(_ context.Context, batch []model.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range batch {
		f.put(ev)
	}
	return nil
}

// Put stores an evaluation as-is.
func (f *Evaluations) Put(ev model.Evaluation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(ev)
}

func (f *Evaluations) put(ev model.Evaluation) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	f.rows[ev.SessionID] = ev
}

// Reads returns how many times GetBySession was called.
func (f *Evaluations) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Len returns the number of stored evaluations.
func (f *Evaluations) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}
