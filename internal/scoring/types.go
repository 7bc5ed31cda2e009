package scoring

import "time"

// MaxAnswerScore is the highest rating a single question can receive ("Très souvent").
const MaxAnswerScore = 3

// Answer is one respondent's rating for one question.
type Answer struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes,omitempty"`
}

// ScoreDistribution tallies answers per frequency bucket for one domain.
type ScoreDistribution struct {
	Never     int `json:"never"`
	Sometimes int `json:"sometimes"`
	Often     int `json:"often"`
	VeryOften int `json:"very_often"`
}

// Total returns the number of answers counted in the distribution.
func (d ScoreDistribution) Total() int {
	return d.Never + d.Sometimes + d.Often + d.VeryOften
}

// TestScores is the computed result for one domain of one session.
type TestScores struct {
	TestName     string            `json:"test_name"`
	TotalScore   float64           `json:"total_score"`
	MaxScore     float64           `json:"max_score"`
	AverageScore float64           `json:"average_score"`
	Level        DomainLevel       `json:"level"`
	Distribution ScoreDistribution `json:"distribution"`
}

// Percentage returns TotalScore as a share of MaxScore in the 0..100 range.
func (s TestScores) Percentage() float64 {
	return ratio(s.TotalScore, s.MaxScore) * 100
}

// DomainAnswers carries the answers collected for one domain of a session.
type DomainAnswers struct {
	Domain  string   `json:"domain"`
	Answers []Answer `json:"answers"`
}

// AnalysisReport aggregates every domain of a session.
type AnalysisReport struct {
	TestScores         []TestScores `json:"test_scores"`
	OverallScore       float64      `json:"overall_score"`
	OverallLevel       OverallBand  `json:"overall_level"`
	Recommendations    []string     `json:"recommendations"`
	NextEvaluationDate time.Time    `json:"next_evaluation_date"`
}

// Progress is the cross-session view of one student's reports.
type Progress struct {
	History            []AnalysisReport `json:"history"`
	ProgressPercentage float64          `json:"progress_percentage"`
}
