package catalog

import "strings"

// AnswerSet maps question text to the chosen option label.
type AnswerSet map[string]string

// Record stores the answer for question, replacing an earlier one.
func (a AnswerSet) Record(question, answer string) {
	a[strings.TrimSpace(question)] = strings.TrimSpace(answer)
}

// Answer returns the recorded answer for question.
func (a AnswerSet) Answer(question string) (string, bool) {
	answer, ok := a[question]
	if !ok || answer == "" {
		return "", false
	}
	return answer, true
}

// Missing lists the catalog questions without an answer, in catalog order.
func (a AnswerSet) Missing(c *Catalog) []string {
	var missing []string
	for _, question := range c.Questions() {
		if _, ok := a.Answer(question.Text); !ok {
			missing = append(missing, question.Text)
		}
	}
	return missing
}

// Complete reports whether every catalog question is answered.
func (a AnswerSet) Complete(c *Catalog) bool {
	return len(a.Missing(c)) == 0
}
