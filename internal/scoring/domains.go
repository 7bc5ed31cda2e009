package scoring

import "strings"

// DomainID identifies a questionnaire domain independently of its display label.
type DomainID string

const (
	DomainInhibition           DomainID = "inhibition"
	DomainCognitiveFlexibility DomainID = "flexibilite_cognitive"
	DomainEmotionalControl     DomainID = "controle_emotionnel"
	DomainSelfRegulation       DomainID = "auto_regulation"
	DomainWorkingMemory        DomainID = "memoire_de_travail"
	DomainPlanning             DomainID = "planification_organisation"
	DomainMaterialOrganizing   DomainID = "organisation_materiel"
	DomainTaskCompletion       DomainID = "achevement_taches"
)

var domainLabels = map[DomainID]string{
	DomainInhibition:           "Inhibition",
	DomainCognitiveFlexibility: "Flexibilité cognitive",
	DomainEmotionalControl:     "Contrôle émotionnel",
	DomainSelfRegulation:       "Auto-régulation",
	DomainWorkingMemory:        "Mémoire de travail",
	DomainPlanning:             "Planification et organisation",
	DomainMaterialOrganizing:   "Organisation du matériel",
	DomainTaskCompletion:       "Achèvement des tâches",
}

// Label returns the display label of the domain, or the raw id when unknown.
func (d DomainID) Label() string {
	if l, ok := domainLabels[d]; ok {
		return l
	}
	return string(d)
}

// ResolveDomain matches a domain id or display label, ignoring case.
func ResolveDomain(name string) (DomainID, bool) {
	name = strings.TrimSpace(name)
	for id, label := range domainLabels {
		if strings.EqualFold(name, string(id)) || strings.EqualFold(name, label) {
			return id, true
		}
	}
	return "", false
}

var domainRecommendations = map[DomainID][2]string{
	DomainInhibition: {
		"Pratiquer des exercices de concentration et de contrôle des impulsions",
		"Établir des routines claires pour les moments de travail",
	},
	DomainCognitiveFlexibility: {
		"Encourager l'exploration de nouvelles méthodes de travail",
		"Proposer des activités variées nécessitant des changements de stratégie",
	},
	DomainEmotionalControl: {
		"Mettre en place des techniques de gestion des émotions",
		"Pratiquer des exercices de respiration et de relaxation",
	},
	DomainSelfRegulation: {
		"Développer des stratégies d'auto-observation",
		"Utiliser des outils de suivi du comportement",
	},
	DomainWorkingMemory: {
		"Utiliser des supports visuels et mnémotechniques",
		"Fractionner les informations en petites unités",
	},
	DomainPlanning: {
		"Mettre en place un système de planification quotidien",
		"Utiliser des check-lists et des rappels visuels",
	},
}

// defaultRecommendations apply when no weak domain produced any advice.
var defaultRecommendations = [2]string{
	"Continuer à maintenir les bonnes pratiques actuelles",
	"Pratiquer régulièrement des exercices de renforcement",
}
