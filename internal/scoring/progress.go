package scoring

// ComputeProgress derives the progress of a student from reports ordered most recent first.
//
// Progress is the percentage change of the mean domain ratio (total/max averaged over
// domains) between the two most recent reports. It is 0 when fewer than two reports
// exist or when the previous ratio is 0.
func ComputeProgress(history []AnalysisReport) Progress {
	p := Progress{History: history}
	if p.History == nil {
		p.History = []AnalysisReport{}
	}
	if len(history) < 2 {
		return p
	}

	current := MeanDomainRatio(history[0].TestScores)
	previous := MeanDomainRatio(history[1].TestScores)
	p.ProgressPercentage = round2(ratio(current-previous, previous) * 100)
	return p
}

// MeanDomainRatio averages total/max across the given domains.
func MeanDomainRatio(scores []TestScores) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += ratio(s.TotalScore, s.MaxScore)
	}
	return sum / float64(len(scores))
}
