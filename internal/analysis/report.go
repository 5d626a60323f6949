package analysis

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/manifoldco/promptui"
)

const panelWidth = 72

var (
	styleTitle   = promptui.Styler(promptui.FGGreen, promptui.FGBold)
	styleHeading = promptui.Styler(promptui.FGBold)
	stylePanel   = promptui.Styler(promptui.FGCyan)
)

// Render writes the human-readable report for a to w.
func Render(w io.Writer, a *Analysis) error {
	rw := &reportWriter{w: w}

	rw.line("")
	rw.line(styleTitle("Career Assessment Report"))

	rw.panel("Profile Summary", a.ProfileSummary)

	rw.line("")
	rw.line(styleHeading("Key Strengths:"))
	rw.bullets(a.Strengths)

	rw.line("")
	rw.line(styleHeading("Areas for Development:"))
	rw.bullets(a.AreasForDevelopment)

	rw.line("")
	rw.line(styleHeading("Recommended Career Paths:"))
	for _, path := range a.RecommendedPaths {
		var body strings.Builder
		body.WriteString(styleHeading(path.Title))
		body.WriteString("\n")
		body.WriteString(path.Description)
		body.WriteString("\n\n")
		writeSection(&body, "Required Skills:", path.RequiredSkills)
		body.WriteString("\n\n")
		writeSection(&body, "Learning Resources:", path.LearningResources)
		body.WriteString("\n\n")
		writeSection(&body, "Next Steps:", path.NextSteps)

		rw.panel("Career Path: "+path.Title, body.String())
	}

	return rw.err
}

func writeSection(b *strings.Builder, heading string, items []string) {
	b.WriteString(styleHeading(heading))
	b.WriteString("\n")
	b.WriteString(strings.Join(bulleted(items), "\n"))
}

func bulleted(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, "• "+item)
	}
	return out
}

type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) line(s string) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintln(r.w, s)
}

func (r *reportWriter) bullets(items []string) {
	for _, item := range bulleted(items) {
		r.line(item)
	}
}

func (r *reportWriter) panel(title, body string) {
	header := "── " + title + " "
	if pad := panelWidth - utf8.RuneCountInString(header); pad > 0 {
		header += strings.Repeat("─", pad)
	}

	r.line(stylePanel(header))
	for _, l := range strings.Split(body, "\n") {
		r.line("  " + l)
	}
	r.line(stylePanel(strings.Repeat("─", panelWidth)))
}
