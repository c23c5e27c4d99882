package views

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"barobaro/internal/domain"
	"barobaro/internal/locale"
	"barobaro/internal/theme"
)

// Styles is the lipgloss rendition of a theme palette. Views share one
// *Styles so a mode change restyles every view without rebuilding them.
type Styles struct {
	Title     lipgloss.Style
	Info      lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Disabled  lipgloss.Style
	Detail    lipgloss.Style
	Value     lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style

	printer *locale.Printer
}

// NewStyles builds styles from a palette. printer formats numbers for the
// active language and may be nil.
func NewStyles(p theme.Palette, printer *locale.Printer) *Styles {
	text := lipgloss.Color(p.Text)
	muted := lipgloss.Color(p.Muted)
	accent := lipgloss.Color(p.Accent)

	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Info:      lipgloss.NewStyle().Foreground(muted),
		Item:      lipgloss.NewStyle().PaddingLeft(2).Foreground(text),
		Selected:  lipgloss.NewStyle().PaddingLeft(2).Foreground(accent).Bold(true),
		Disabled:  lipgloss.NewStyle().PaddingLeft(2).Foreground(muted),
		Detail:    lipgloss.NewStyle().Foreground(muted).PaddingLeft(4),
		Value:     lipgloss.NewStyle().Foreground(accent),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:      lipgloss.NewStyle().Foreground(muted).MarginTop(1),
		Tab:       lipgloss.NewStyle().Foreground(muted),
		ActiveTab: lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true),
		printer:   printer,
	}
}

// Restyle replaces s in place with styles for p
func (s *Styles) Restyle(p theme.Palette) {
	*s = *NewStyles(p, s.printer)
}

// Sprintf formats through the locale printer when one is set
func (s *Styles) Sprintf(format string, args ...any) string {
	if s == nil || s.printer == nil {
		return fmt.Sprintf(format, args...)
	}
	return s.printer.Sprintf(format, args...)
}

// defaultStyles is used by views constructed without styles
func defaultStyles(s *Styles) *Styles {
	if s != nil {
		return s
	}
	return NewStyles(theme.DefaultPalette(domain.ThemeLight), nil)
}
