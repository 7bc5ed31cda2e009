package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Completed and cancelled sessions are final.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionStatusPending:
		return next == SessionStatusInProgress || next == SessionStatusCancelled
	case SessionStatusInProgress:
		return next == SessionStatusCompleted || next == SessionStatusCancelled
	default:
		return false
	}
}

// TestSession is one questionnaire run for a student, led by an evaluator.
type TestSession struct {
	ID          uuid.UUID     `json:"id"`
	StudentID   int           `json:"student_id"`
	EvaluatorID int           `json:"evaluator_id"`
	Status      SessionStatus `json:"status"`
	StartTime   *time.Time    `json:"start_time,omitempty"`
	EndTime     *time.Time    `json:"end_time,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ReferenceDate is the date a report is anchored on: the end of the session when
// known, otherwise its start, otherwise its creation.
func (s *TestSession) ReferenceDate() time.Time {
	switch {
	case s.EndTime != nil:
		return *s.EndTime
	case s.StartTime != nil:
		return *s.StartTime
	default:
		return s.CreatedAt
	}
}

// CreateSessionRequest is the payload for opening a session.
type CreateSessionRequest struct {
	StudentID int `json:"student_id" binding:"required,min=1"`
}

// SessionState is a session together with every answer recorded so far,
// including answers still buffered by autosave.
type SessionState struct {
	Session       *TestSession            `json:"session"`
	Answers       map[string]TestResponse `json:"answers"`
	AnsweredCount int                     `json:"answered_count"`
	QuestionCount int                     `json:"question_count"`
}
