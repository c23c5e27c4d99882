package views_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"barobaro/internal/domain"
	"barobaro/internal/tui/views"
)

func TestStatus_Loading(t *testing.T) {
	model := views.NewStatus(views.StatusData{}, nil)

	assert.Contains(t, model.View(), "Loading configuration")
}

func TestStatus_Loaded(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.GameHome = "/games/Barotrauma"

	model := views.NewStatus(views.StatusData{
		Config:    cfg,
		Loaded:    true,
		Build:     &domain.BuildInfo{Version: "1.0.0", Commit: "abc", Date: "2025-07-07"},
		Installed: 3,
		Enabled:   2,
		Profiles:  1,
		Theme:     domain.ThemeDark,
	}, nil)

	view := model.View()
	assert.Contains(t, view, "/games/Barotrauma")
	assert.Contains(t, view, "not set")
	assert.Contains(t, view, "Installed: 3  Enabled: 2  Profiles: 1")
	assert.Contains(t, view, "Backend 1.0.0 (abc, 2025-07-07)")
	assert.Contains(t, view, "Metadata batch size: 20")
}

func TestStatus_InitError(t *testing.T) {
	model := views.NewStatus(views.StatusData{InitErr: errors.New("connection refused")}, nil)

	view := model.View()
	assert.Contains(t, view, "Backend unavailable: connection refused")
	assert.NotContains(t, view, "Loading configuration")
}

func TestStatus_Keys(t *testing.T) {
	model := views.NewStatus(views.StatusData{}, nil)

	_, cmd := model.Update(runes("d"))
	assert.IsType(t, views.DetectGameHomeMsg{}, run(cmd))

	_, cmd = model.Update(runes("r"))
	assert.IsType(t, views.RefreshMsg{}, run(cmd))

	updated := model.SetData(views.StatusData{Loaded: true, Installed: 9})
	assert.Contains(t, updated.View(), "Installed: 9")
}
