package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// EvaluatorRepository handles evaluator account data access.
type EvaluatorRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluatorRepository creates a new EvaluatorRepository.
func NewEvaluatorRepository(pool *pgxpool.Pool) *EvaluatorRepository {
	return &EvaluatorRepository{pool: pool}
}

// GetByID retrieves an evaluator by ID.
func (r *EvaluatorRepository) GetByID(ctx context.Context, id int) (*model.Evaluator, error) {
	e := &model.Evaluator{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM evaluators WHERE id = $1`, id,
	).Scan(&e.ID, &e.Email, &e.Name, &e.PasswordHash, &e.Role, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// GetByEmail retrieves an evaluator by their unique email.
func (r *EvaluatorRepository) GetByEmail(ctx context.Context, email string) (*model.Evaluator, error) {
	e := &model.Evaluator{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM evaluators WHERE lower(email) = lower($1)`, email,
	).Scan(&e.ID, &e.Email, &e.Name, &e.PasswordHash, &e.Role, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// Create inserts a new evaluator.
func (r *EvaluatorRepository) Create(ctx context.Context, e *model.Evaluator) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO evaluators (email, name, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		e.Email, e.Name, e.PasswordHash, e.Role,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}
