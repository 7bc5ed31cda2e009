package model

import (
	"time"

	"github.com/google/uuid"
)

// TestResponse is the answer given to one question during a session.
// A session holds at most one response per question; later answers replace earlier ones.
type TestResponse struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	QuestionID   string    `json:"question_id"`
	AnswerScore  float64   `json:"answer_score"`
	Notes        string    `json:"notes,omitempty"`
	ResponseTime time.Time `json:"response_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordResponseRequest is the payload for answering a question.
type RecordResponseRequest struct {
	QuestionID  string   `json:"question_id" binding:"required,max=64"`
	AnswerScore *float64 `json:"answer_score" binding:"required,answer_score"`
	Notes       string   `json:"notes" binding:"max=1000"`
}
