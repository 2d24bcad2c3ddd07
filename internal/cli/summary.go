package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/cardforge/internal/executor"
)

// Summary color palette (256-color ANSI).
var (
	colorHeader  = lipgloss.Color("39")  // blue
	colorOK      = lipgloss.Color("42")  // green
	colorWarning = lipgloss.Color("214") // orange
	colorFailed  = lipgloss.Color("196") // red
	colorMuted   = lipgloss.Color("240") // gray
)

// deckSummary pairs a deck name with its run statistics for display.
type deckSummary struct {
	deck  string
	stats executor.Stats
}

// renderSummary writes a per-deck run summary to w. When styled is false
// (output is piped), plain text is emitted instead of ANSI styling.
func renderSummary(w io.Writer, summary deckSummary, styled bool) {
	if !styled {
		fmt.Fprintf(w, "%s: %d cards, %d succeeded, %d retried, %d failed, %d batches failed\n",
			summary.deck, summary.stats.Total, summary.stats.Succeeded,
			summary.stats.Retried, summary.stats.Failed, summary.stats.BatchesFailed)
		return
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)
	okStyle := lipgloss.NewStyle().Foreground(colorOK).Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render(summary.deck))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		labelStyle.Render("cards:"),
		okStyle.Render(fmt.Sprintf("%d/%d", summary.stats.Succeeded, summary.stats.Total))))

	if summary.stats.Retried > 0 {
		retriedStyle := lipgloss.NewStyle().Foreground(colorWarning)
		b.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render("retried:"),
			retriedStyle.Render(fmt.Sprintf("%d", summary.stats.Retried))))
	}
	if summary.stats.Failed > 0 {
		failedStyle := lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
		b.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render("failed:"),
			failedStyle.Render(fmt.Sprintf("%d", summary.stats.Failed))))
	}
	if summary.stats.BatchesFailed > 0 {
		failedStyle := lipgloss.NewStyle().Foreground(colorFailed)
		b.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render("batches failed:"),
			failedStyle.Render(fmt.Sprintf("%d", summary.stats.BatchesFailed))))
	}

	fmt.Fprint(w, b.String())
}
