package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// The store interfaces below are satisfied by the repositories in internal/repository.

// StudentStore persists students.
type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	ListPaginated(ctx context.Context, limit, offset int) ([]model.Student, int, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
}

// EvaluatorStore persists evaluator accounts.
type EvaluatorStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Evaluator, error)
	Create(ctx context.Context, e *model.Evaluator) error
}

// SessionStore persists test sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.TestSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error)
	ListByStudent(ctx context.Context, studentID int, status model.SessionStatus, limit int) ([]model.TestSession, error)
	Transition(ctx context.Context, id uuid.UUID, from []model.SessionStatus, next model.SessionStatus, at time.Time) (*model.TestSession, error)
}

// ResponseStore persists test responses.
type ResponseStore interface {
	Upsert(ctx context.Context, resp *model.TestResponse) error
	UpsertBatch(ctx context.Context, batch []model.TestResponse) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.TestResponse, error)
}

// EvaluationReader loads persisted evaluations.
type EvaluationReader interface {
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.Evaluation, error)
}
