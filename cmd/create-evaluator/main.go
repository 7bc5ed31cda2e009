package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/database"
	"github.com/neuronalfit/assessment-backend/internal/logger"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	evaluatorService := service.NewEvaluatorService(repository.NewEvaluatorRepository(pool), authService, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Evaluator ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Print("Enter Role [evaluator/admin] (default evaluator): ")
	roleStr, _ := reader.ReadString('\n')
	role := model.RoleEvaluator
	if r := strings.TrimSpace(roleStr); r != "" {
		role = model.Role(strings.ToLower(r))
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	ev, err := evaluatorService.Create(ctx, name, email, password, role)
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		fmt.Printf("Error: unknown role %q\n", role)
		return
	case errors.Is(err, service.ErrEmailTaken):
		fmt.Printf("Error: %s is already registered\n", email)
		return
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create evaluator")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %d\n", ev.Role, ev.Name, ev.Email, ev.ID)
}
