// Package questionnaire holds the assessment catalog: domains, their questions and the
// frequency scale answers are given on.
package questionnaire

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// FrequencyOption is one step of the answer scale.
type FrequencyOption struct {
	Value float64 `yaml:"value" json:"value"`
	Label string  `yaml:"label" json:"label"`
}

// Question is a single catalog item.
type Question struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

// Domain groups the questions measuring one executive function.
type Domain struct {
	ID              scoring.DomainID `yaml:"id" json:"id"`
	Label           string           `yaml:"label" json:"label"`
	Description     string           `yaml:"description" json:"description"`
	DurationMinutes int              `yaml:"duration_minutes" json:"duration_minutes"`
	Questions       []Question       `yaml:"questions" json:"questions"`
}

// Catalog is the parsed questionnaire. It is read-only after Parse.
type Catalog struct {
	Version          int               `yaml:"version" json:"version"`
	FrequencyOptions []FrequencyOption `yaml:"frequency_options" json:"frequency_options"`
	Domains          []Domain          `yaml:"domains" json:"domains"`

	index map[string]position
}

type position struct {
	domain   int
	question int
}

// Load parses the catalog embedded in the binary.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// MustLoad is Load for program start-up.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Domains) == 0 {
		return nil, errors.New("catalog has no domains")
	}
	for _, o := range c.FrequencyOptions {
		if o.Value < 0 || o.Value > scoring.MaxAnswerScore {
			return nil, fmt.Errorf("frequency option %q: value %v out of range", o.Label, o.Value)
		}
	}

	c.index = make(map[string]position)
	seenDomains := make(map[scoring.DomainID]bool, len(c.Domains))
	for di, d := range c.Domains {
		if d.ID == "" || d.Label == "" {
			return nil, fmt.Errorf("domain #%d: id and label are required", di+1)
		}
		if seenDomains[d.ID] {
			return nil, fmt.Errorf("domain %q declared twice", d.ID)
		}
		seenDomains[d.ID] = true
		if len(d.Questions) == 0 {
			return nil, fmt.Errorf("domain %q has no questions", d.ID)
		}
		for qi, q := range d.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("domain %q question #%d: id is required", d.ID, qi+1)
			}
			if _, dup := c.index[q.ID]; dup {
				return nil, fmt.Errorf("question %q declared twice", q.ID)
			}
			c.index[q.ID] = position{domain: di, question: qi}
		}
	}
	return &c, nil
}

// Domain returns the domain with the given id.
func (c *Catalog) Domain(id scoring.DomainID) (Domain, bool) {
	for _, d := range c.Domains {
		if d.ID == id {
			return d, true
		}
	}
	return Domain{}, false
}

// Question returns a question and the domain it belongs to.
func (c *Catalog) Question(id string) (Question, Domain, bool) {
	p, ok := c.index[id]
	if !ok {
		return Question{}, Domain{}, false
	}
	d := c.Domains[p.domain]
	return d.Questions[p.question], d, true
}

// QuestionCount is the number of items across all domains.
func (c *Catalog) QuestionCount() int {
	return len(c.index)
}

// Group arranges answers keyed by question id into scoring input.
// Domains follow catalog order and answers follow question order; domains without any
// answer are left out. Unknown question ids are returned separately.
func (c *Catalog) Group(answers map[string]scoring.Answer) (groups []scoring.DomainAnswers, unknown []string) {
	for id := range answers {
		if _, ok := c.index[id]; !ok {
			unknown = append(unknown, id)
		}
	}

	for _, d := range c.Domains {
		var list []scoring.Answer
		for _, q := range d.Questions {
			if a, ok := answers[q.ID]; ok {
				list = append(list, a)
			}
		}
		if len(list) > 0 {
			groups = append(groups, scoring.DomainAnswers{Domain: d.Label, Answers: list})
		}
	}
	return groups, unknown
}

// Rows flattens the catalog into questions table rows, numbered from 1 within each domain.
func (c *Catalog) Rows() []model.Question {
	rows := make([]model.Question, 0, len(c.index))
	for _, d := range c.Domains {
		for i, q := range d.Questions {
			rows = append(rows, model.Question{
				ID:       q.ID,
				Domain:   string(d.ID),
				Position: i + 1,
				Text:     q.Text,
			})
		}
	}
	return rows
}
