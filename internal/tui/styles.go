// Package tui renders the review desk as a terminal mini-app.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"reviewdesk/internal/domain"
	"reviewdesk/internal/integrations/host"
)

var (
	colorPrimary     = lipgloss.Color("#007BFF")
	colorMuted       = lipgloss.Color("#6c757d")
	colorBorder      = lipgloss.Color("#2a3850")
	colorSuccess     = lipgloss.Color("#8BC34A")
	colorDestructive = lipgloss.Color("#e53935")
	colorWarning     = lipgloss.Color("#FFC107")
)

type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Muted     lipgloss.Style
	Cursor    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Card      lipgloss.Style
	Modal     lipgloss.Style
	Error     lipgloss.Style

	Approve lipgloss.Style
	Reject  lipgloss.Style
	Skip    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Subtitle:  lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Cursor:    lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(colorPrimary),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2),
		Error:   lipgloss.NewStyle().Foreground(colorDestructive),
		Approve: lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
		Reject:  lipgloss.NewStyle().Bold(true).Foreground(colorDestructive),
		Skip:    lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
	}
}

// Outcome renders a decision badge.
func (s Styles) Outcome(o domain.Outcome) string {
	label := "[" + o.Label() + "]"
	switch o {
	case domain.OutcomeApprove:
		return s.Approve.Render(label)
	case domain.OutcomeReject:
		return s.Reject.Render(label)
	default:
		return s.Skip.Render(label)
	}
}

// MainButton paints the host button with its configured colors.
func (s Styles) MainButton(p host.MainButtonParams) string {
	st := lipgloss.NewStyle().Bold(true).Padding(0, 3)
	if p.Color != "" {
		st = st.Background(lipgloss.Color(p.Color))
	}
	if p.TextColor != "" {
		st = st.Foreground(lipgloss.Color(p.TextColor))
	}
	return st.Render(p.Text)
}
