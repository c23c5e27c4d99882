package tui_test

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barobaro/internal/core"
	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/gateway/gatewaytest"
	"barobaro/internal/locale"
	"barobaro/internal/storage/config"
	"barobaro/internal/tui"
	"barobaro/internal/tui/views"
)

func newBackend() *gatewaytest.Backend {
	b := gatewaytest.NewBackend()
	b.Installed = []domain.Mod{{SteamWorkshopID: 1, Name: "Alpha"}, {SteamWorkshopID: 2, Name: "Beta"}}
	b.Enabled = []domain.Mod{{SteamWorkshopID: 2, Name: "Beta"}}
	b.Lists = []domain.ModList{{ProfileName: "Survival", BasePackage: "Vanilla", Mods: []string{"1", "2"}}}
	b.Metadata[1] = domain.Mod{SteamWorkshopID: 1, Name: "Alpha", Creator: "someone", Size: 2048}
	return b
}

func newTUI(t *testing.T, backend *gatewaytest.Backend, settingsDir string) (tui.App, *core.App) {
	t.Helper()
	printer := locale.NewPrinter()
	c := core.New(core.Options{Gateway: backend, Localizer: printer, Logger: zerolog.Nop()})
	app := tui.NewApp(context.Background(), tui.Options{
		Core:        c,
		Settings:    *config.Defaults(),
		SettingsDir: settingsDir,
		ExportDir:   t.TempDir(),
		Printer:     printer,
	})
	t.Cleanup(app.Close)
	return app, c
}

// step feeds msg to the model and runs the returned command once,
// feeding its message back in
func step(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd != nil {
		m, _ = m.Update(cmd())
	}
	return m
}

func loaded(t *testing.T, app tui.App) tui.App {
	t.Helper()
	return step(t, app, views.RefreshMsg{}).(tui.App)
}

func TestNewApp_InitialState(t *testing.T) {
	app, _ := newTUI(t, newBackend(), "")

	assert.Equal(t, tui.ViewStatus, app.CurrentView())
	view := app.View()
	assert.Contains(t, view, "barobaro")
	assert.Contains(t, view, "Loading configuration")
}

func TestApp_NavigateToView(t *testing.T) {
	app, _ := newTUI(t, newBackend(), "")

	m, _ := app.Update(tui.NavigateMsg{View: tui.ViewProfiles})
	assert.Equal(t, tui.ViewProfiles, m.(tui.App).CurrentView())

	m, _ = m.Update(runes("2"))
	assert.Equal(t, tui.ViewInstalled, m.(tui.App).CurrentView())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tui.ViewEnabled, m.(tui.App).CurrentView())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, tui.ViewSettings, m.(tui.App).CurrentView())
}

func TestApp_QuitOnQ(t *testing.T) {
	app, _ := newTUI(t, newBackend(), "")

	_, cmd := app.Update(runes("q"))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestApp_TextInputCapturesKeys(t *testing.T) {
	app, _ := newTUI(t, newBackend(), "")

	m, _ := app.Update(runes("5"))
	require.Equal(t, tui.ViewWorkshop, m.(tui.App).CurrentView())

	// the Workshop input is focused, so digits and q are typed
	m, _ = m.Update(runes("1"))
	m, _ = m.Update(runes("q"))
	assert.Equal(t, tui.ViewWorkshop, m.(tui.App).CurrentView())
	assert.Contains(t, m.View(), "1q")
}

func TestApp_Load(t *testing.T) {
	backend := newBackend()
	app, c := newTUI(t, backend, "")

	app = loaded(t, app)
	require.NoError(t, app.Err())
	assert.True(t, c.Initialized())
	assert.Equal(t, "Survival", app.ActiveProfile())

	got, ok := c.Installed.Get(1)
	require.True(t, ok)
	assert.Equal(t, "someone", got.Creator, "metadata retrieved after refresh")

	m, _ := app.Update(runes("2"))
	view := m.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Profile: Survival")
	assert.Contains(t, view, "by someone")

	m, _ = m.Update(runes("1"))
	assert.Contains(t, m.View(), "0.0.0-test")
}

func TestApp_LoadFailureShowsError(t *testing.T) {
	backend := newBackend()
	backend.Fail(gateway.CmdReadConfig, errors.New("connection refused"))
	app, c := newTUI(t, backend, "")

	app = loaded(t, app)
	require.Error(t, app.Err())
	assert.False(t, c.Initialized())
	assert.Contains(t, app.View(), "Backend unavailable")
}

func TestApp_ToggleModInActiveProfile(t *testing.T) {
	backend := newBackend()
	app, c := newTUI(t, backend, "")
	app = loaded(t, app)

	m, _ := app.Update(runes("2"))
	// space on Alpha emits a toggle, which saves the profile
	m, cmd := m.Update(runes(" "))
	require.NotNil(t, cmd)
	m = step(t, m, cmd())

	require.NoError(t, m.(tui.App).Err())
	list, ok := c.Profiles.Get("Survival")
	require.True(t, ok)
	assert.Equal(t, []string{"2"}, list.Mods)

	backend.Lock()
	assert.Equal(t, []string{"2"}, backend.Lists[0].Mods)
	backend.Unlock()

	// toggling again adds it back
	m, cmd = m.Update(runes(" "))
	require.NotNil(t, cmd)
	step(t, m, cmd())
	list, _ = c.Profiles.Get("Survival")
	assert.ElementsMatch(t, []string{"1", "2"}, list.Mods)
}

func TestApp_CreateAndSelectProfile(t *testing.T) {
	backend := newBackend()
	app, c := newTUI(t, backend, "")
	app = loaded(t, app)

	m := step(t, app, views.CreateProfileMsg{Name: "Hardcore"})
	require.NoError(t, m.(tui.App).Err())
	assert.True(t, c.Profiles.Has("Hardcore"))

	m, _ = m.Update(views.SelectProfileMsg{Name: "Hardcore"})
	assert.Equal(t, "Hardcore", m.(tui.App).ActiveProfile())

	m = step(t, m, views.DeleteProfileMsg{Name: "Survival"})
	assert.False(t, c.Profiles.Has("Survival"))
	assert.Equal(t, "Hardcore", m.(tui.App).ActiveProfile())
}

func TestApp_LookupAndDownload(t *testing.T) {
	backend := newBackend()
	backend.Metadata[77] = domain.Mod{SteamWorkshopID: 77, Name: "Gamma", Creator: "other"}
	app, c := newTUI(t, backend, "")
	app = loaded(t, app)

	m, _ := app.Update(runes("5"))
	m = step(t, m, views.LookupMsg{ID: 77})
	assert.Contains(t, m.View(), "Gamma")

	m = step(t, m, views.DownloadModMsg{ID: 77})
	require.NoError(t, m.(tui.App).Err())
	assert.Equal(t, "Downloaded 77", m.(tui.App).Notice())

	got, ok := c.Installed.Get(77)
	require.True(t, ok)
	assert.Equal(t, "other", got.Creator)
}

func TestApp_SettingsPersist(t *testing.T) {
	backend := newBackend()
	dir := t.TempDir()
	app, c := newTUI(t, backend, dir)
	app = loaded(t, app)

	m := step(t, app, views.SettingsChangedMsg{Settings: views.SettingsData{
		Theme:       domain.ThemeLight,
		Language:    domain.LanguageZH,
		Opacity:     0.4,
		Keybindings: tui.KeysStandard,
	}})
	require.NoError(t, m.(tui.App).Err())

	backend.Lock()
	ui := *backend.Config.UIConfig
	backend.Unlock()
	assert.Equal(t, domain.ThemeLight, ui.Theme)
	assert.Equal(t, domain.LanguageZH, ui.Language)
	assert.InDelta(t, 0.4, ui.BackgroundOpacity, 1e-9)
	assert.Equal(t, domain.LanguageZH, c.Language())

	s, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, tui.KeysStandard, s.Keybindings)
}

func TestApp_SettingsWithoutBackend(t *testing.T) {
	backend := newBackend()
	backend.Fail(gateway.CmdReadConfig, errors.New("connection refused"))
	app, c := newTUI(t, backend, "")
	app = loaded(t, app)
	require.Equal(t, domain.ThemeLight, c.Theme.Mode())

	m, cmd := app.Update(views.SettingsChangedMsg{Settings: views.SettingsData{
		Theme:       domain.ThemeDark,
		Keybindings: tui.KeysVim,
	}})
	assert.Nil(t, cmd)
	assert.Equal(t, domain.ThemeDark, c.Theme.Mode())
	assert.Contains(t, m.(tui.App).Notice(), "this session")
	assert.Zero(t, backend.Count(gateway.CmdWriteConfig))
}
