package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/service/servicetest"
)

func TestAuthService_TokenRoundTrip(t *testing.T) {
	auth := service.NewAuthService(testConfig())

	token, err := auth.GenerateToken(7, model.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.Role != model.RoleAdmin || claims.Subject != "7" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestAuthService_RejectsForeignSignature(t *testing.T) {
	other := testConfig()
	other.JWTSecret = "another-secret"

	token, err := service.NewAuthService(other).GenerateToken(1, model.RoleEvaluator)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := service.NewAuthService(testConfig()).ValidateToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestAuthService_Password(t *testing.T) {
	auth := service.NewAuthService(testConfig())

	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := auth.CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestEvaluatorService_CreateAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := service.NewAuthService(testConfig())
	svc := service.NewEvaluatorService(&servicetest.Evaluators{}, auth, nopLog)

	ev, err := svc.Create(ctx, " Claire Martin ", "Claire@Example.com", "motdepasse", model.RoleEvaluator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.Email != "claire@example.com" || ev.Name != "Claire Martin" {
		t.Errorf("expected normalised identity, got %+v", ev)
	}

	if _, err := svc.Create(ctx, "Autre", "claire@example.com", "motdepasse", model.RoleAdmin); !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Create(ctx, "Autre", "autre@example.com", "motdepasse", model.Role("root")); !errors.Is(err, service.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	resp, err := svc.Login(ctx, model.LoginRequest{Email: "claire@example.com", Password: "motdepasse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := auth.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != ev.ID || claims.Role != model.RoleEvaluator {
		t.Errorf("unexpected claims %+v", claims)
	}

	for _, req := range []model.LoginRequest{
		{Email: "claire@example.com", Password: "mauvais"},
		{Email: "inconnu@example.com", Password: "motdepasse"},
	} {
		if _, err := svc.Login(ctx, req); !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("login %s: expected ErrInvalidCredentials, got %v", req.Email, err)
		}
	}
}

func TestStudentService(t *testing.T) {
	ctx := context.Background()
	svc := service.NewStudentService(servicetest.NewStudents("A", "B", "C"))

	students, page, err := svc.ListStudents(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(students) != 1 || students[0].FullName != "C" {
		t.Errorf("unexpected page content %+v", students)
	}
	if page.TotalItems != 3 || page.TotalPages != 2 || page.Page != 2 {
		t.Errorf("unexpected pagination %+v", page)
	}

	created, err := svc.Create(ctx, model.StudentRequest{FullName: "Léa Dubois", DateOfBirth: "2014-09-12", GradeLevel: "CM2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.DateOfBirth.Year() != 2014 {
		t.Errorf("unexpected student %+v", created)
	}

	updated, err := svc.Update(ctx, created.ID, model.StudentRequest{FullName: "Léa Dubois", DateOfBirth: "2014-09-12", GradeLevel: "6e"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.GradeLevel != "6e" {
		t.Errorf("expected grade 6e, got %q", updated.GradeLevel)
	}

	if _, err := svc.Update(ctx, 999, model.StudentRequest{FullName: "X Y", DateOfBirth: "2014-09-12", GradeLevel: "6e"}); !errors.Is(err, service.ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
	if _, err := svc.GetByID(ctx, 999); !errors.Is(err, service.ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}
