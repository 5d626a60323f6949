// Package prompt renders an answer set into the instruction text sent to the language model.
package prompt

import (
	_ "embed"
	"strings"
	"unicode/utf8"

	"github.com/spigell/career-advisor/internal/apperr"
	"github.com/spigell/career-advisor/internal/catalog"
)

// Version identifies the revision of the embedded template. Bump it whenever prompt.md changes.
const Version = "1"

const answersPlaceholder = "{{ASSESSMENT_ANSWERS}}"

// SystemInstruction is sent as the system message with every analysis request.
const SystemInstruction = "You are a career counselor specializing in helping fresh graduates find their ideal career path. " +
	"Provide detailed, specific, and actionable recommendations in valid JSON format. " +
	"Consider all possible career paths and industries."

//go:embed prompt.md
var promptTemplate string

// Build renders the prompt for answers. Every catalog question must be answered.
func Build(answers catalog.AnswerSet, cat *catalog.Catalog) (string, error) {
	if missing := answers.Missing(cat); len(missing) > 0 {
		return "", &apperr.IncompleteAnswersError{Missing: missing}
	}

	return strings.Replace(promptTemplate, answersPlaceholder, formatAnswers(answers, cat), 1), nil
}

// formatAnswers lists "Q:/A:" pairs grouped under underlined category titles.
func formatAnswers(answers catalog.AnswerSet, cat *catalog.Catalog) string {
	var b strings.Builder
	for _, category := range cat.Categories {
		b.WriteString("\n")
		b.WriteString(category.Title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", utf8.RuneCountInString(category.Title)))
		b.WriteString("\n\n")

		for _, question := range category.Questions {
			answer, _ := answers.Answer(question.Text)
			b.WriteString("Q: ")
			b.WriteString(question.Text)
			b.WriteString("\nA: ")
			b.WriteString(answer)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
