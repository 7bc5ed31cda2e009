package service

import (
	"context"
	"errors"

	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/neuronalfit/assessment-backend/internal/response"
)

// StudentService handles student business logic.
type StudentService struct {
	studentRepo StudentStore
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo StudentStore) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	return st, err
}

// ListStudents retrieves students with pagination.
func (s *StudentService) ListStudents(ctx context.Context, page, perPage int) ([]model.Student, *response.Pagination, error) {
	p := response.NewPagination(page, perPage, 0)

	students, total, err := s.studentRepo.ListPaginated(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, nil, err
	}

	if students == nil {
		students = []model.Student{}
	}

	return students, response.NewPagination(p.Page, p.PerPage, total), nil
}

// Create inserts a new student.
func (s *StudentService) Create(ctx context.Context, req model.StudentRequest) (*model.Student, error) {
	st, err := req.ToStudent()
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Update replaces a student's details.
func (s *StudentService) Update(ctx context.Context, id int, req model.StudentRequest) (*model.Student, error) {
	st, err := req.ToStudent()
	if err != nil {
		return nil, err
	}
	st.ID = id
	if err := s.studentRepo.Update(ctx, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return st, nil
}
