package scoring

import (
	"fmt"
	"strings"
)

// GenerateAnalysis writes the narrative summary shown alongside a report: one global
// sentence based on the mean domain level, then one paragraph per domain with its
// dominant answer frequency.
func GenerateAnalysis(scores []TestScores) (string, error) {
	if len(scores) == 0 {
		return "", ErrEmptyReport
	}

	var rankSum int
	for _, s := range scores {
		rankSum += s.Level.rank()
	}
	mean := float64(rankSum) / float64(len(scores))

	var b strings.Builder
	b.WriteString("Analyse globale : ")
	switch {
	case mean >= 3.5:
		b.WriteString("Excellente maîtrise générale des compétences évaluées. ")
	case mean >= 2.5:
		b.WriteString("Bonne maîtrise avec quelques points d'amélioration. ")
	case mean >= 1.5:
		b.WriteString("Niveau moyen nécessitant un renforcement ciblé. ")
	default:
		b.WriteString("Des difficultés importantes nécessitant un accompagnement spécifique. ")
	}

	for _, s := range scores {
		fmt.Fprintf(&b, "\n\n%s : ", s.TestName)
		switch s.Level {
		case LevelExcellent:
			b.WriteString("Maîtrise exceptionnelle. ")
		case LevelBon:
			b.WriteString("Bonne maîtrise. ")
		case LevelMoyen:
			b.WriteString("Niveau satisfaisant mais perfectible. ")
		default:
			b.WriteString("Des difficultés significatives. ")
		}
		fmt.Fprintf(&b, "Tendance dominante : réponses \"%s\". ", DominantFrequency(s.Distribution))
	}

	return b.String(), nil
}

// DominantFrequency returns the label of the most populated bucket.
// On a tie the later bucket wins (Très souvent over Souvent over Parfois over Jamais).
func DominantFrequency(d ScoreDistribution) string {
	buckets := []struct {
		label string
		count int
	}{
		{"jamais", d.Never},
		{"parfois", d.Sometimes},
		{"souvent", d.Often},
		{"très souvent", d.VeryOften},
	}
	best := buckets[0]
	for _, c := range buckets[1:] {
		if c.count >= best.count {
			best = c
		}
	}
	return best.label
}
