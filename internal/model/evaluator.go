package model

import "time"

// Role is the access level of an evaluator account.
type Role string

const (
	RoleEvaluator Role = "evaluator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEvaluator || r == RoleAdmin
}

// Evaluator is a practitioner running assessments.
type Evaluator struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for evaluator authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	Evaluator Evaluator `json:"evaluator"`
}
