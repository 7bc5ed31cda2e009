package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// EvaluationRepository handles the persisted analysis of completed sessions.
type EvaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

const upsertEvaluationSQL = `
	INSERT INTO evaluations (session_id, student_id, overall_score, overall_level, detailed_results, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id) DO UPDATE
	SET overall_score = EXCLUDED.overall_score,
	    overall_level = EXCLUDED.overall_level,
	    detailed_results = EXCLUDED.detailed_results,
	    completed_at = EXCLUDED.completed_at,
	    updated_at = NOW()`

// Upsert stores one evaluation keyed by session.
func (r *EvaluationRepository) Upsert(ctx context.Context, e *model.Evaluation) error {
	detailed, err := json.Marshal(e.DetailedResults)
	if err != nil {
		return fmt.Errorf("encode detailed results: %w", err)
	}
	_, err = r.pool.Exec(ctx, upsertEvaluationSQL,
		e.SessionID, e.StudentID, e.OverallScore, string(e.OverallLevel), detailed, e.CompletedAt,
	)
	return mapError(err)
}

// UpsertBatch stores many evaluations in a single statement using UNNEST.
func (r *EvaluationRepository) UpsertBatch(ctx context.Context, batch []model.Evaluation) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	sessionIDs := make([]uuid.UUID, n)
	studentIDs := make([]int, n)
	scores := make([]float64, n)
	levels := make([]string, n)
	details := make([]string, n)
	completed := make([]time.Time, n)
	for i, e := range batch {
		raw, err := json.Marshal(e.DetailedResults)
		if err != nil {
			return fmt.Errorf("encode detailed results for %s: %w", e.SessionID, err)
		}
		sessionIDs[i] = e.SessionID
		studentIDs[i] = e.StudentID
		scores[i] = e.OverallScore
		levels[i] = string(e.OverallLevel)
		details[i] = string(raw)
		completed[i] = e.CompletedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO evaluations (session_id, student_id, overall_score, overall_level, detailed_results, completed_at)
		SELECT DISTINCT ON (u.session_id)
			u.session_id, u.student_id, u.overall_score, u.overall_level, u.detailed_results::jsonb, u.completed_at
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::float8[],
			$4::text[],
			$5::text[],
			$6::timestamptz[]
		) AS u (session_id, student_id, overall_score, overall_level, detailed_results, completed_at)
		ORDER BY u.session_id, u.completed_at DESC
		ON CONFLICT (session_id) DO UPDATE
		SET overall_score = EXCLUDED.overall_score,
		    overall_level = EXCLUDED.overall_level,
		    detailed_results = EXCLUDED.detailed_results,
		    completed_at = EXCLUDED.completed_at,
		    updated_at = NOW()
	`, sessionIDs, studentIDs, scores, levels, details, completed)
	return mapError(err)
}

// GetBySession returns the evaluation of a session.
func (r *EvaluationRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.Evaluation, error) {
	var (
		e      model.Evaluation
		detail []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, student_id, overall_score, overall_level, detailed_results, completed_at, created_at, updated_at
		 FROM evaluations WHERE session_id = $1`, sessionID,
	).Scan(&e.ID, &e.SessionID, &e.StudentID, &e.OverallScore, &e.OverallLevel, &detail, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal(detail, &e.DetailedResults); err != nil {
		return nil, fmt.Errorf("decode detailed results: %w", err)
	}
	return &e, nil
}
