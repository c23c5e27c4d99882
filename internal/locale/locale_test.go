package locale

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"barobaro/internal/domain"
)

type staticConfig struct {
	cfg    domain.Config
	loaded bool
}

func (s staticConfig) Snapshot() domain.Config { return s.cfg }
func (s staticConfig) Loaded() bool            { return s.loaded }

type mapPrefs struct {
	vals   map[string]string
	getErr error
}

func (m *mapPrefs) GetPreference(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *mapPrefs) SetPreference(_ context.Context, key, value string) error {
	m.vals[key] = value
	return nil
}

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Language
	}{
		{"en", domain.LanguageEN},
		{"en-US", domain.LanguageEN},
		{"zh", domain.LanguageZH},
		{"zh_CN", domain.LanguageZH},
		{"zh-Hans-CN", domain.LanguageZH},
		{"fr", domain.LanguageEN},
		{"", domain.LanguageEN},
		{"not a locale!", domain.LanguageEN},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.in))
		})
	}
}

func TestFromConfig(t *testing.T) {
	zh := domain.DefaultConfig()
	zh.UIConfig.Language = domain.LanguageZH

	assert.Equal(t, domain.LanguageZH, FromConfig(staticConfig{cfg: zh, loaded: true}))
	assert.Equal(t, domain.LanguageEN, FromConfig(staticConfig{cfg: zh, loaded: false}))
	assert.Equal(t, domain.LanguageEN, FromConfig(staticConfig{cfg: domain.Config{}, loaded: true}))
	assert.Equal(t, domain.LanguageEN, FromConfig(nil))
}

func TestResolver_ResolveInstallsAndStores(t *testing.T) {
	zh := domain.DefaultConfig()
	zh.UIConfig.Language = domain.LanguageZH

	prefs := &mapPrefs{vals: map[string]string{}}
	printer := NewPrinter()
	r := NewResolver(prefs, printer, zerolog.Nop())

	got := r.Resolve(context.Background(), staticConfig{cfg: zh, loaded: true})
	assert.Equal(t, domain.LanguageZH, got)
	assert.Equal(t, domain.LanguageZH, printer.Language())
	assert.Equal(t, "zh", prefs.vals[PreferenceKey])
}

func TestResolver_Bootstrap(t *testing.T) {
	prefs := &mapPrefs{vals: map[string]string{PreferenceKey: "zh"}}
	printer := NewPrinter()
	r := NewResolver(prefs, printer, zerolog.Nop())

	assert.Equal(t, domain.LanguageZH, r.Bootstrap(context.Background()))
	assert.Equal(t, domain.LanguageZH, printer.Language())
}

func TestResolver_BootstrapFallsBackToEnglish(t *testing.T) {
	printer := NewPrinter()
	printer.SetLanguage(domain.LanguageZH)

	r := NewResolver(&mapPrefs{getErr: errors.New("db locked")}, printer, zerolog.Nop())
	assert.Equal(t, domain.LanguageEN, r.Bootstrap(context.Background()))
	assert.Equal(t, domain.LanguageEN, printer.Language())

	r = NewResolver(nil, nil, zerolog.Nop())
	assert.Equal(t, domain.LanguageEN, r.Bootstrap(context.Background()))
}

func TestPrinter_Numbers(t *testing.T) {
	p := NewPrinter()
	assert.Equal(t, "1,234,567", p.Sprintf("%d", 1234567))
}
