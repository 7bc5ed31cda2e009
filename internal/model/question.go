package model

// Question is a questionnaire item as stored in the questions table.
// Rows are seeded from the embedded catalog.
type Question struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}
