package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// Palette used when writing to a terminal.
var (
	colorTitle  = lipgloss.Color("#7C3AED") // Purple
	colorMuted  = lipgloss.Color("#6C7086") // Medium gray
	colorLow    = lipgloss.Color("#A6E3A1") // Green
	colorMedium = lipgloss.Color("#F9E2AF") // Yellow
	colorHigh   = lipgloss.Color("#F38BA8") // Red
	colorMark   = lipgloss.Color("#06B6D4") // Cyan
)

// renderer styles command output. Styling is off unless the writer is a terminal.
type renderer struct {
	styled bool

	title  lipgloss.Style
	muted  lipgloss.Style
	mark   lipgloss.Style
	levels map[domain.RiskLevel]lipgloss.Style
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{
		styled: isTerminal(w),
		title:  lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
		mark:   lipgloss.NewStyle().Bold(true).Foreground(colorMark),
		levels: map[domain.RiskLevel]lipgloss.Style{
			domain.RiskLow:    lipgloss.NewStyle().Bold(true).Foreground(colorLow),
			domain.RiskMedium: lipgloss.NewStyle().Bold(true).Foreground(colorMedium),
			domain.RiskHigh:   lipgloss.NewStyle().Bold(true).Foreground(colorHigh),
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *renderer) Title(s string) string {
	if !r.styled {
		return s
	}
	return r.title.Render(s)
}

func (r *renderer) Muted(s string) string {
	if !r.styled {
		return s
	}
	return r.muted.Render(s)
}

func (r *renderer) Risk(level domain.RiskLevel) string {
	style, ok := r.levels[level]
	if !r.styled || !ok {
		return level.String()
	}
	return style.Render(level.String())
}

// Highlight replaces the index markers in a snippet. Plain output keeps them.
func (r *renderer) Highlight(snippet, open, closing string) string {
	if !r.styled || open == "" || closing == "" {
		return snippet
	}

	var b strings.Builder
	rest := snippet
	for {
		i := strings.Index(rest, open)
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+len(open):], closing)
		if j < 0 {
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(r.mark.Render(rest[i+len(open) : i+len(open)+j]))
		rest = rest[i+len(open)+j+len(closing):]
	}
	b.WriteString(rest)
	return b.String()
}
