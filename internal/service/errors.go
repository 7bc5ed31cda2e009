package service

import "errors"

// Domain errors returned by the services. Handlers map them onto response codes.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidRole          = errors.New("invalid role")
	ErrStudentNotFound      = errors.New("student not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotInProgress = errors.New("session is not in progress")
	ErrInvalidTransition    = errors.New("session status transition not allowed")
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrInvalidScore         = errors.New("answer score out of range")
)

// ErrSessionNotCompleted is returned when an evaluation is requested for an open session.
var ErrSessionNotCompleted = errors.New("session is not completed")
