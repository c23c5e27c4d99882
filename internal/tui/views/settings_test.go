package views_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barobaro/internal/domain"
	"barobaro/internal/tui/views"
)

func defaultSettings() views.SettingsData {
	return views.SettingsData{
		Theme:       domain.ThemeLight,
		Language:    domain.LanguageEN,
		Opacity:     0.2,
		Keybindings: "vim",
	}
}

func TestSettings_InitialState(t *testing.T) {
	model := views.NewSettings(defaultSettings(), nil)

	assert.Equal(t, 0, model.Selected())
	assert.Equal(t, defaultSettings(), model.CurrentSettings())

	view := model.View()
	assert.Contains(t, view, "Theme: Light")
	assert.Contains(t, view, "Background opacity: 20%")
}

func TestSettings_Navigate(t *testing.T) {
	model := views.NewSettings(defaultSettings(), nil)

	m, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.(views.Settings).Selected())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 3, m.(views.Settings).Selected())
}

func TestSettings_CycleTheme(t *testing.T) {
	model := views.NewSettings(defaultSettings(), nil)

	m, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, domain.ThemeDark, m.(views.Settings).CurrentSettings().Theme)

	msg, ok := run(cmd).(views.SettingsChangedMsg)
	require.True(t, ok)
	assert.Equal(t, domain.ThemeDark, msg.Settings.Theme)

	// the original model is untouched
	assert.Equal(t, domain.ThemeLight, model.CurrentSettings().Theme)
	assert.Contains(t, model.View(), "Theme: Light")
}

func TestSettings_CycleLanguage(t *testing.T) {
	model := views.NewSettings(defaultSettings(), nil)

	m, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})

	assert.Equal(t, domain.LanguageZH, m.(views.Settings).CurrentSettings().Language)
	assert.Contains(t, m.View(), "简体中文")
}

func TestSettings_CycleOpacityBothWays(t *testing.T) {
	model := views.NewSettings(defaultSettings(), nil)

	m, _ := model.Update(runes("j"))
	m, _ = m.Update(runes("j"))

	m, _ = m.Update(runes("l"))
	assert.InDelta(t, 0.4, m.(views.Settings).CurrentSettings().Opacity, 1e-9)

	m, _ = m.Update(runes("h"))
	m, _ = m.Update(runes("h"))
	assert.InDelta(t, 0.0, m.(views.Settings).CurrentSettings().Opacity, 1e-9)

	// wraps to the last step
	m, _ = m.Update(runes("h"))
	assert.InDelta(t, 0.8, m.(views.Settings).CurrentSettings().Opacity, 1e-9)
}

func TestSettings_CycleKeybindings(t *testing.T) {
	model := views.NewSettings(defaultSettings(), nil)

	m, _ := model.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "standard", m.(views.Settings).CurrentSettings().Keybindings)
}

func TestSettings_ViewContainsCurrentValues(t *testing.T) {
	model := views.NewSettings(views.SettingsData{
		Theme:       domain.ThemeDark,
		Language:    domain.LanguageZH,
		Opacity:     0.6,
		Keybindings: "standard",
	}, nil)

	view := model.View()
	assert.Contains(t, view, "Theme: Dark")
	assert.Contains(t, view, "简体中文")
	assert.Contains(t, view, "60%")
	assert.Contains(t, view, "standard")
}
