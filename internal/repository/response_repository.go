package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// ResponseRepository handles test response data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// Upsert stores a response, replacing any earlier answer to the same question.
// An older response_time never overwrites a newer one.
func (r *ResponseRepository) Upsert(ctx context.Context, resp *model.TestResponse) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_responses (session_id, question_id, answer_score, notes, response_time)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET answer_score = EXCLUDED.answer_score,
		     notes = EXCLUDED.notes,
		     response_time = EXCLUDED.response_time
		 WHERE test_responses.response_time <= EXCLUDED.response_time
		 RETURNING id, created_at`,
		resp.SessionID, resp.QuestionID, resp.AnswerScore, resp.Notes, resp.ResponseTime,
	).Scan(&resp.ID, &resp.CreatedAt)
	// A stale write matches no row: the stored answer is newer and stays.
	if err = mapError(err); errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// UpsertBatch stores many responses in a single statement using UNNEST.
// Within the batch the latest response_time per (session, question) wins.
func (r *ResponseRepository) UpsertBatch(ctx context.Context, batch []model.TestResponse) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	sessionIDs := make([]uuid.UUID, n)
	questionIDs := make([]string, n)
	scores := make([]float64, n)
	notes := make([]string, n)
	times := make([]time.Time, n)
	for i, resp := range batch {
		sessionIDs[i] = resp.SessionID
		questionIDs[i] = resp.QuestionID
		scores[i] = resp.AnswerScore
		notes[i] = resp.Notes
		times[i] = resp.ResponseTime
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO test_responses (session_id, question_id, answer_score, notes, response_time)
		SELECT DISTINCT ON (u.session_id, u.question_id)
			u.session_id, u.question_id, u.answer_score, u.notes, u.response_time
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::float8[],
			$4::text[],
			$5::timestamptz[]
		) AS u (session_id, question_id, answer_score, notes, response_time)
		ORDER BY u.session_id, u.question_id, u.response_time DESC
		ON CONFLICT (session_id, question_id) DO UPDATE
		SET answer_score = EXCLUDED.answer_score,
		    notes = EXCLUDED.notes,
		    response_time = EXCLUDED.response_time
		WHERE test_responses.response_time <= EXCLUDED.response_time
	`, sessionIDs, questionIDs, scores, notes, times)
	return mapError(err)
}

// ListBySession returns all responses of a session ordered by question.
func (r *ResponseRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.TestResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, answer_score, notes, response_time, created_at
		 FROM test_responses
		 WHERE session_id = $1
		 ORDER BY question_id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TestResponse
	for rows.Next() {
		var resp model.TestResponse
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.QuestionID, &resp.AnswerScore, &resp.Notes, &resp.ResponseTime, &resp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}
