// Package render formats analysis reports for people.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/moolen/upgradelens/internal/models"
)

// DefaultWordWrap is used when the terminal width is unknown.
const DefaultWordWrap = 100

// Markdown renders a breaking change report as a Markdown document.
func Markdown(r *models.BreakingChangeReport) string {
	var b strings.Builder

	b.WriteString("# Upgrade readiness\n\n")
	if r.AnalysisID != "" {
		fmt.Fprintf(&b, "Analysis `%s`\n\n", r.AnalysisID)
	}

	sa := r.SeverityAssessment
	b.WriteString("| Severity score | Immediate action | Migration required |\n")
	b.WriteString("|---|---|---|\n")
	fmt.Fprintf(&b, "| %.1f / 10 | %s | %s |\n\n", sa.OverallScore, yesNo(sa.RequiresImmediateAction), yesNo(sa.MigrationRequired))

	b.WriteString("## Breaking changes\n\n")
	if len(r.BreakingChanges) == 0 {
		b.WriteString("None detected.\n\n")
	}
	for _, bc := range r.BreakingChanges {
		fmt.Fprintf(&b, "- **%s** (%s, %.2f): %s\n", bc.Text, bc.Type, bc.Confidence, quote(bc.Context))
	}
	if len(r.BreakingChanges) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## API deprecations\n\n")
	if len(r.APIDeprecations) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		b.WriteString("| Indicator | API versions | Resource kinds |\n")
		b.WriteString("|---|---|---|\n")
		for _, d := range r.APIDeprecations {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(d.Indicator), list(d.APIVersions), list(d.ResourceKinds))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Critical actions\n\n")
	if len(r.CriticalActions) == 0 {
		b.WriteString("None.\n\n")
	}
	for i, a := range r.CriticalActions {
		fmt.Fprintf(&b, "%d. [%s] %s (priority %.2f)\n", i+1, a.Severity, a.Action, a.Priority)
	}
	if len(r.CriticalActions) > 0 {
		b.WriteString("\n")
	}

	c := r.KubernetesComponents
	b.WriteString("## Kubernetes components\n\n")
	fmt.Fprintf(&b, "- API objects: %s\n", list(c.APIObjects))
	fmt.Fprintf(&b, "- API groups: %s\n", list(c.APIGroups))
	fmt.Fprintf(&b, "- EKS add-ons: %s\n", list(c.EKSAddons))

	return b.String()
}

// Write prints md to w. When w is a terminal the Markdown is styled with
// glamour and wrapped to the terminal width.
func Write(w io.Writer, md string) error {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(w, md)
		return err
	}

	width := DefaultWordWrap
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 8 {
		width = cols - 4
	}
	styled, err := Style(md, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, styled)
	return err
}

// Style renders md for a terminal, wrapped at width columns.
func Style(md string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + cell(item) + "`"
	}
	return strings.Join(quoted, ", ")
}

func cell(s string) string {
	return strings.ReplaceAll(flatten(s), "|", `\|`)
}

func quote(s string) string {
	return "\"" + flatten(s) + "\""
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
