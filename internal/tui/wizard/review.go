package wizard

import (
	"fmt"
	"strings"

	"charm.land/glamour/v2"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/mark3labs/leadwizard/internal/wizard"
)

// reviewMarkdown summarizes every answered field in def up to the final step.
func reviewMarkdown(def wizard.Definition, fields form.Store, estimate int, hasEstimate bool) string {
	var b strings.Builder
	b.WriteString("## Review your answers\n\n")
	b.WriteString("| Field | Answer |\n|---|---|\n")
	for _, step := range def.Steps[:len(def.Steps)-1] {
		for _, spec := range step.Fields {
			v, ok := fields.Get(spec.Name)
			if !ok || v.IsEmpty() {
				continue
			}
			text := strings.ReplaceAll(v.Text(), "\n", " ")
			if spec.Kind == form.KindBool {
				text = yesNo(v.Bool())
			}
			fmt.Fprintf(&b, "| %s | %s |\n", spec.Label, escapeCell(text))
		}
	}
	if hasEstimate {
		fmt.Fprintf(&b, "\n**Estimated premium:** %s\n\n_%s_\n", pricing.Format(estimate), pricing.Disclaimer)
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderMarkdown renders markdown content using glamour.
// Falls back to plain text if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 100 for readability
	if width > 100 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}
