package scoring

import (
	"fmt"
	"math"
)

// Distribution bucket upper bounds on the raw per-answer score.
const (
	neverUpperBound     = 0.75
	sometimesUpperBound = 1.5
	oftenUpperBound     = 2.25
)

// CalculateDomainScore computes the TestScores of one domain.
//
// The average divides by the declared questionCount rather than len(answers), so a
// partial submission lowers the average instead of failing. TestName is left empty
// for the caller to fill in.
func CalculateDomainScore(answers []Answer, questionCount int) (TestScores, error) {
	if questionCount <= 0 {
		return TestScores{}, ErrInvalidQuestionCount
	}
	if len(answers) > questionCount {
		return TestScores{}, fmt.Errorf("%w: %d answers for %d questions", ErrTooManyAnswers, len(answers), questionCount)
	}

	var (
		dist  ScoreDistribution
		total float64
	)
	for i, a := range answers {
		if math.IsNaN(a.Score) || a.Score < 0 || a.Score > MaxAnswerScore {
			return TestScores{}, fmt.Errorf("%w: answer %d scored %v", ErrScoreOutOfRange, i, a.Score)
		}
		bucket(&dist, a.Score)
		total += a.Score
	}

	maxScore := float64(questionCount * MaxAnswerScore)

	return TestScores{
		TotalScore:   total,
		MaxScore:     maxScore,
		AverageScore: round2(total / float64(questionCount)),
		Level:        ClassifyDomain(ratio(total, maxScore) * 100),
		Distribution: dist,
	}, nil
}

func bucket(d *ScoreDistribution, score float64) {
	switch {
	case score <= neverUpperBound:
		d.Never++
	case score <= sometimesUpperBound:
		d.Sometimes++
	case score <= oftenUpperBound:
		d.Often++
	default:
		d.VeryOften++
	}
}
