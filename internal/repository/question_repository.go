package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// QuestionRepository handles the questions table, which mirrors the catalog.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Sync upserts every question in a single statement. Questions missing from qs are kept,
// since stored responses may still reference them.
func (r *QuestionRepository) Sync(ctx context.Context, qs []model.Question) (int64, error) {
	if len(qs) == 0 {
		return 0, nil
	}

	ids := make([]string, len(qs))
	domains := make([]string, len(qs))
	positions := make([]int, len(qs))
	texts := make([]string, len(qs))
	for i, q := range qs {
		ids[i], domains[i], positions[i], texts[i] = q.ID, q.Domain, q.Position, q.Text
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO questions (id, domain, position, text)
		 SELECT * FROM UNNEST($1::text[], $2::text[], $3::int[], $4::text[])
		 ON CONFLICT (id) DO UPDATE
		 SET domain = EXCLUDED.domain, position = EXCLUDED.position, text = EXCLUDED.text`,
		ids, domains, positions, texts,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// List returns all stored questions in domain then position order.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, domain, position, text FROM questions ORDER BY domain, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Domain, &q.Position, &q.Text); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}
