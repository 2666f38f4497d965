package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/claimsight/claimsight/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	coveredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	deniedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	notesStyle   = lipgloss.NewStyle().Width(76)
)

// Decision renders the final decision as a bordered terminal block.
func Decision(w io.Writer, d model.Decision) {
	verdict := deniedStyle.Render("NOT COVERED")
	if d.Covered {
		verdict = coveredStyle.Render("COVERED")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Claim %s", d.ClaimID)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Verdict:"), verdict)
	fmt.Fprintf(&b, "%s %.2f\n", labelStyle.Render("Deductible:"), d.Deductible)
	fmt.Fprintf(&b, "%s %.2f\n", labelStyle.Render("Recommended payout:"), d.RecommendedPayout)
	if d.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", labelStyle.Render("Notes:"), notesStyle.Render(d.Notes))
	}

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

// Line renders the decision as a single line, for batch summaries.
func Line(d model.Decision) string {
	verdict := "not covered"
	if d.Covered {
		verdict = "covered"
	}
	return fmt.Sprintf("%s: %s, deductible %.2f, payout %.2f", d.ClaimID, verdict, d.Deductible, d.RecommendedPayout)
}

// WriteJSON writes the decision as indented JSON to path.
func WriteJSON(path string, d model.Decision) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write decision: %w", err)
	}
	return nil
}
