package scoring

import (
	"errors"
	"math"
)

var (
	// ErrEmptyReport is returned when a session report is requested with no domains.
	ErrEmptyReport = errors.New("cannot build a report without any domain")
	// ErrInvalidQuestionCount is returned when the declared question count is not positive.
	ErrInvalidQuestionCount = errors.New("question count must be greater than zero")
	// ErrScoreOutOfRange is returned for answer scores outside 0..3 or NaN.
	ErrScoreOutOfRange = errors.New("answer score must be between 0 and 3")
	// ErrTooManyAnswers is returned when more answers than declared questions are given.
	ErrTooManyAnswers = errors.New("more answers than declared questions")
)

// ratio divides num by den and substitutes 0 whenever the result would not be finite.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// round2 rounds to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
