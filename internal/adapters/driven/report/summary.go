package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// Theme holds the colours used by the styled summary.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Border  lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Border:  lipgloss.Color("#45475A"), // Border gray
	}
}

// SummaryRenderer prints the short run summary. Styled output uses colour
// and a rounded border; plain output is for pipes and files.
type SummaryRenderer struct {
	styled bool

	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	box     lipgloss.Style
}

// NewSummaryRenderer creates a renderer. Pass styled=true only when
// writing to a terminal.
func NewSummaryRenderer(styled bool) *SummaryRenderer {
	theme := DefaultTheme()
	return &SummaryRenderer{
		styled:  styled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		label:   lipgloss.NewStyle().Foreground(theme.Muted),
		value:   lipgloss.NewStyle().Bold(true),
		good:    lipgloss.NewStyle().Foreground(theme.Success),
		warning: lipgloss.NewStyle().Foreground(theme.Warning),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// Render writes the summary of a run.
func (r *SummaryRenderer) Render(w io.Writer, sum domain.RunSummary) error {
	var b strings.Builder

	b.WriteString(r.style(r.title, fmt.Sprintf("Reconciliation %s", strings.ToUpper(sum.Insurer))))
	b.WriteString("\n")
	r.line(&b, "Run", shortID(sum.ID))
	r.line(&b, "Mode", string(sum.Mode))
	for _, src := range sum.Sources {
		r.line(&b, src.Name, fmt.Sprintf("%d rows, %d kept", src.Loaded, src.Kept))
	}
	r.line(&b, "Combined", fmt.Sprintf("%d (%d superseded)", sum.Combined, sum.Discarded))
	r.line(&b, "Insurer", fmt.Sprintf("%d", sum.External))
	b.WriteString("\n")

	for _, bucket := range domain.Buckets {
		r.line(&b, bucket.Title(), fmt.Sprintf("%d", sum.Counts[bucket]))
	}
	b.WriteString("\n")
	r.line(&b, "Match rate", r.style(r.good, FormatRate(sum.MatchRate)))
	if sum.Warnings > 0 {
		r.line(&b, "Warnings", r.style(r.warning, fmt.Sprintf("%d", sum.Warnings)))
	}

	out := strings.TrimRight(b.String(), "\n")
	if r.styled {
		out = r.box.Render(out)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func (r *SummaryRenderer) line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", r.style(r.label, fmt.Sprintf("%-40s", label+":")), r.style(r.value, value))
}

func (r *SummaryRenderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// shortID returns the first eight characters of a run ID, enough to pass
// to "history show".
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
