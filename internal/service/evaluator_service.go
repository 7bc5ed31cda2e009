package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/rs/zerolog"
)

// EvaluatorService handles evaluator accounts and login.
type EvaluatorService struct {
	evaluatorRepo EvaluatorStore
	auth          *AuthService
	log           zerolog.Logger
}

// NewEvaluatorService creates a new EvaluatorService.
func NewEvaluatorService(evaluatorRepo EvaluatorStore, auth *AuthService, log zerolog.Logger) *EvaluatorService {
	return &EvaluatorService{
		evaluatorRepo: evaluatorRepo,
		auth:          auth,
		log:           log.With().Str("component", "evaluator_service").Logger(),
	}
}

// Login verifies the credentials and issues a token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *EvaluatorService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	ev, err := s.evaluatorRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get evaluator: %w", err)
	}

	if err := s.auth.CheckPassword(ev.PasswordHash, req.Password); err != nil {
		s.log.Warn().Int("evaluator_id", ev.ID).Msg("Failed login attempt")
		return nil, err
	}

	token, err := s.auth.GenerateToken(ev.ID, ev.Role)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{Token: token, Evaluator: *ev}, nil
}

// Create registers an evaluator with a hashed password.
func (s *EvaluatorService) Create(ctx context.Context, name, email, password string, role model.Role) (*model.Evaluator, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ev := &model.Evaluator{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.evaluatorRepo.Create(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create evaluator: %w", err)
	}

	s.log.Info().Int("evaluator_id", ev.ID).Str("role", string(role)).Msg("Evaluator created")
	return ev, nil
}
