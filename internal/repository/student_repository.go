package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuronalfit/assessment-backend/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, full_name, date_of_birth, grade_level, created_at, updated_at`

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.FullName, &s.DateOfBirth, &s.GradeLevel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// ListPaginated retrieves students ordered by name, with the total count.
func (r *StudentRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Student, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY full_name, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.DateOfBirth, &s.GradeLevel, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (full_name, date_of_birth, grade_level)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.FullName, s.DateOfBirth, s.GradeLevel,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies a student's details.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET full_name = $1, date_of_birth = $2, grade_level = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		s.FullName, s.DateOfBirth, s.GradeLevel, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}
