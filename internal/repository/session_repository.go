package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// SessionRepository handles test session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, student_id, evaluator_id, status, start_time, end_time, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.TestSession, error) {
	s := &model.TestSession{}
	if err := row.Scan(&s.ID, &s.StudentID, &s.EvaluatorID, &s.Status, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// Create inserts a pending session.
func (r *SessionRepository) Create(ctx context.Context, s *model.TestSession) error {
	s.Status = model.SessionStatusPending
	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_sessions (student_id, evaluator_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.StudentID, s.EvaluatorID, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id,
	))
}

// ListByStudent retrieves a student's sessions, newest first. A zero status lists all
// states; a non-positive limit lists everything.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID int, status model.SessionStatus, limit int) ([]model.TestSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM test_sessions
		 WHERE student_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY COALESCE(end_time, start_time, created_at) DESC, created_at DESC`
	args := []any{studentID, string(status)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TestSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Transition moves a session to next if its current status is one of from.
// start_time is set when entering in_progress and end_time when reaching a final state.
// Returns ErrNotFound when no session matched, including a status mismatch.
func (r *SessionRepository) Transition(ctx context.Context, id uuid.UUID, from []model.SessionStatus, next model.SessionStatus, at time.Time) (*model.TestSession, error) {
	fromStr := make([]string, len(from))
	for i, f := range from {
		fromStr[i] = string(f)
	}

	return scanSession(r.pool.QueryRow(ctx,
		`UPDATE test_sessions
		 SET status = $3,
		     start_time = CASE WHEN $3 = 'in_progress' THEN $4 ELSE start_time END,
		     end_time = CASE WHEN $3 IN ('completed', 'cancelled') THEN $4 ELSE end_time END
		 WHERE id = $1 AND status = ANY($2::text[])
		 RETURNING `+sessionColumns,
		id, fromStr, string(next), at,
	))
}
