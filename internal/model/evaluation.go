package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
)

// Evaluation is the persisted analysis of a completed session.
type Evaluation struct {
	ID              uuid.UUID              `json:"id"`
	SessionID       uuid.UUID              `json:"session_id"`
	StudentID       int                    `json:"student_id"`
	OverallScore    float64                `json:"overall_score"`
	OverallLevel    scoring.OverallBand    `json:"overall_level"`
	DetailedResults scoring.AnalysisReport `json:"detailed_results"`
	CompletedAt     time.Time              `json:"completed_at"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// SessionReport is the analysis report of a session together with display fields.
type SessionReport struct {
	SessionID           uuid.UUID              `json:"session_id"`
	StudentID           int                    `json:"student_id"`
	Status              SessionStatus          `json:"status"`
	Report              scoring.AnalysisReport `json:"report"`
	NextEvaluationLabel string                 `json:"next_evaluation_label"`
}

// ToEvaluation projects a report of a completed session onto its persisted form.
func (r *SessionReport) ToEvaluation(completedAt time.Time) Evaluation {
	return Evaluation{
		SessionID:       r.SessionID,
		StudentID:       r.StudentID,
		OverallScore:    r.Report.OverallScore,
		OverallLevel:    r.Report.OverallLevel,
		DetailedResults: r.Report,
		CompletedAt:     completedAt,
	}
}

// StudentProgress is the evolution of a student across completed sessions.
type StudentProgress struct {
	StudentID  int         `json:"student_id"`
	SessionIDs []uuid.UUID `json:"session_ids"`
	scoring.Progress
}

// SessionAnalysis is the narrative reading of a session report.
type SessionAnalysis struct {
	SessionID    uuid.UUID           `json:"session_id"`
	OverallLevel scoring.OverallBand `json:"overall_level"`
	Analysis     string              `json:"analysis"`
}
