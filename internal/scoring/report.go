package scoring

import (
	"fmt"
	"time"
)

// nextEvaluationMonths is the delay before the next recommended evaluation.
const nextEvaluationMonths = 3

// BuildSessionReport scores every domain of a session and merges the results.
//
// Domains keep their input order in the report. A domain without answers yields a
// zero TestScores that counts as 0% in the overall score.
func BuildSessionReport(domains []DomainAnswers, sessionDate time.Time) (AnalysisReport, error) {
	if len(domains) == 0 {
		return AnalysisReport{}, ErrEmptyReport
	}

	scores := make([]TestScores, 0, len(domains))
	for _, d := range domains {
		var (
			s   TestScores
			err error
		)
		if len(d.Answers) == 0 {
			s = TestScores{Level: LevelFaible}
		} else {
			s, err = CalculateDomainScore(d.Answers, len(d.Answers))
			if err != nil {
				return AnalysisReport{}, fmt.Errorf("domain %q: %w", d.Domain, err)
			}
		}
		s.TestName = d.Domain
		scores = append(scores, s)
	}

	overall := OverallScore(scores)

	return AnalysisReport{
		TestScores:         scores,
		OverallScore:       overall,
		OverallLevel:       ClassifyOverall(overall),
		Recommendations:    GenerateRecommendations(scores),
		NextEvaluationDate: NextEvaluationDate(sessionDate),
	}, nil
}

// OverallScore is the mean of the per-domain percentages, each domain weighing the same.
func OverallScore(scores []TestScores) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s.Percentage()
	}
	return sum / float64(len(scores))
}

// GenerateRecommendations collects the advice pairs of every Faible domain, in order.
// When no domain contributes, the two generic recommendations are returned.
func GenerateRecommendations(scores []TestScores) []string {
	var recs []string
	for _, s := range scores {
		if s.Level != LevelFaible {
			continue
		}
		id, ok := ResolveDomain(s.TestName)
		if !ok {
			continue
		}
		if pair, ok := domainRecommendations[id]; ok {
			recs = append(recs, pair[0], pair[1])
		}
	}
	if len(recs) == 0 {
		recs = append(recs, defaultRecommendations[0], defaultRecommendations[1])
	}
	return recs
}

// NextEvaluationDate adds three calendar months to from. Day overflow rolls into the
// following month (January 31st becomes May 1st).
func NextEvaluationDate(from time.Time) time.Time {
	return from.AddDate(0, nextEvaluationMonths, 0)
}
