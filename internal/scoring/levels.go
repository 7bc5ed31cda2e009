package scoring

// DomainLevel is the four-band classification of a single domain.
type DomainLevel string

const (
	LevelFaible    DomainLevel = "Faible"
	LevelMoyen     DomainLevel = "Moyen"
	LevelBon       DomainLevel = "Bon"
	LevelExcellent DomainLevel = "Excellent"
)

// ClassifyDomain maps a 0..100 percentage to a DomainLevel.
// Each boundary value belongs to the lower band.
func ClassifyDomain(percentage float64) DomainLevel {
	switch {
	case percentage <= 50:
		return LevelFaible
	case percentage <= 70:
		return LevelMoyen
	case percentage <= 85:
		return LevelBon
	default:
		return LevelExcellent
	}
}

// rank orders levels from 1 (Faible) to 4 (Excellent).
func (l DomainLevel) rank() int {
	switch l {
	case LevelExcellent:
		return 4
	case LevelBon:
		return 3
	case LevelMoyen:
		return 2
	default:
		return 1
	}
}

// OverallBand is the three-band classification of a whole session.
// It is defined independently from DomainLevel and uses different thresholds.
type OverallBand string

const (
	BandDifficulties OverallBand = "Difficultés importantes"
	BandAverage      OverallBand = "Niveau moyen avec axes d'amélioration"
	BandGood         OverallBand = "Bonne maîtrise générale"
)

// ClassifyOverall maps a 0..100 overall score to an OverallBand.
func ClassifyOverall(score float64) OverallBand {
	switch {
	case score < 33:
		return BandDifficulties
	case score < 66:
		return BandAverage
	default:
		return BandGood
	}
}
