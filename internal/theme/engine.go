// Package theme derives presentation state from the configuration.
//
// The engine tracks two coupled axes: the theme mode and the overlay
// opacity. Palette variables depend only on mode and accent; overlay
// variables depend only on opacity and blur. Both are computed for every
// mode so either setter can run in any order without losing the other's
// effect. The background image is fetched separately and never blocks
// either setter.
package theme

import (
	"context"
	"errors"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/watch"
)

// PreferenceKey is the local preference holding the last theme mode
const PreferenceKey = "theme"

// ConfigSource is the read side of the configuration store
type ConfigSource interface {
	Snapshot() domain.Config
	Loaded() bool
	Subscribe() (string, <-chan domain.Config)
	Unsubscribe(id string)
}

// Preferences is local fast-access storage available before the backend answers
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// State is a snapshot of the engine's presentation state
type State struct {
	Mode       domain.Theme
	Opacity    float64
	Blur       uint32
	Accent     string
	Vars       Variables // effective variables for Mode
	Background Background
}

// Engine computes and publishes presentation state
type Engine struct {
	cfg   ConfigSource
	gw    gateway.Gateway
	prefs Preferences
	log   zerolog.Logger

	mu      sync.RWMutex
	mode    domain.Theme
	opacity float64
	blur    uint32
	accent  colorful.Color
	palette map[domain.Theme]Variables
	overlay map[domain.Theme]Variables

	bgMu       sync.RWMutex
	background Background

	modes       *watch.Broadcaster[domain.Theme]
	backgrounds *watch.Broadcaster[Background]
}

// New creates an engine in its startup state: Light mode, zero overlay and
// no background image. prefs may be nil.
func New(cfg ConfigSource, gw gateway.Gateway, prefs Preferences, log zerolog.Logger) *Engine {
	e := &Engine{
		cfg:         cfg,
		gw:          gw,
		prefs:       prefs,
		log:         log.With().Str("component", "theme").Logger(),
		mode:        domain.ThemeLight,
		accent:      ParseAccent(domain.DefaultAccentColor),
		palette:     make(map[domain.Theme]Variables, len(Modes)),
		overlay:     make(map[domain.Theme]Variables, len(Modes)),
		modes:       watch.New[domain.Theme](),
		backgrounds: watch.New[Background](),
	}
	for _, m := range Modes {
		e.palette[m] = paletteVars(m, e.accent)
		e.overlay[m] = overlayVars(m, 0, 0)
	}
	return e
}

// Bootstrap applies the mode stored in local preferences, if any, without
// persisting it again. Used before the first backend round trip.
func (e *Engine) Bootstrap(ctx context.Context) {
	if e.prefs == nil {
		return
	}
	v, ok, err := e.prefs.GetPreference(ctx, PreferenceKey)
	if err != nil {
		e.log.Warn().Err(err).Msg("reading stored theme")
		return
	}
	if !ok {
		return
	}
	e.setMode(domain.ParseTheme(v))
}

// SetTheme switches the mode, recomputes the palette for both modes,
// stores the mode locally and notifies mode subscribers.
func (e *Engine) SetTheme(ctx context.Context, mode domain.Theme) {
	e.setMode(mode)
	if e.prefs != nil {
		if err := e.prefs.SetPreference(ctx, PreferenceKey, mode.String()); err != nil {
			e.log.Warn().Err(err).Msg("storing theme")
		}
	}
}

// Fallback returns to Light mode without storing it, for when the
// configuration could not be loaded.
func (e *Engine) Fallback() {
	e.setMode(domain.ThemeLight)
}

func (e *Engine) setMode(mode domain.Theme) {
	if mode != domain.ThemeDark {
		mode = domain.ThemeLight
	}
	accent := e.configuredAccent()

	e.mu.Lock()
	e.mode = mode
	e.accent = accent
	for _, m := range Modes {
		e.palette[m] = paletteVars(m, accent)
	}
	e.mu.Unlock()

	e.log.Debug().Str("mode", mode.String()).Msg("theme set")
	e.modes.Publish(mode)
}

// SetTransparent regenerates the overlay variables for both modes from the
// configured opacity and blur. The mode is untouched.
func (e *Engine) SetTransparent() {
	var (
		opacity float64
		blur    uint32
	)
	if e.cfg != nil && e.cfg.Loaded() {
		if ui := e.cfg.Snapshot().UIConfig; ui != nil {
			opacity, blur = clamp01(ui.BackgroundOpacity), ui.BackgroundBlur
		}
	}

	e.mu.Lock()
	e.opacity, e.blur = opacity, blur
	for _, m := range Modes {
		e.overlay[m] = overlayVars(m, opacity, blur)
	}
	e.mu.Unlock()
}

// SetBackgroundImage fetches the rendered background from the backend and
// publishes it. On failure the previous image stays in place and the error
// is only logged and returned.
func (e *Engine) SetBackgroundImage(ctx context.Context) error {
	uri, err := gateway.GetBackgroundImage(ctx, e.gw)
	if err != nil {
		e.log.Warn().Err(err).Msg("fetching background image")
		return err
	}
	bg, err := ParseBackground(uri)
	if err != nil {
		e.log.Warn().Err(err).Msg("decoding background image")
		return err
	}

	e.bgMu.Lock()
	e.background = bg
	e.bgMu.Unlock()

	e.log.Debug().Str("format", bg.Format).Int("width", bg.Width).Int("height", bg.Height).Msg("background image set")
	e.backgrounds.Publish(bg)
	return nil
}

// LoadBackgroundImage runs SetBackgroundImage in its own goroutine. The
// returned channel yields its result once and is then closed.
func (e *Engine) LoadBackgroundImage(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.SetBackgroundImage(ctx)
	}()
	return done
}

// Apply drives every transition from a configuration snapshot. The
// background image load runs asynchronously.
func (e *Engine) Apply(ctx context.Context, cfg domain.Config) {
	mode := domain.ThemeLight
	if cfg.UIConfig != nil {
		mode = cfg.UIConfig.Theme
	}
	e.SetTheme(ctx, mode)
	e.SetTransparent()
	e.LoadBackgroundImage(ctx)
}

// Watch applies the current configuration, if loaded, and then every new
// snapshot until ctx is done.
func (e *Engine) Watch(ctx context.Context) error {
	if e.cfg == nil {
		return errors.New("theme: no configuration source")
	}
	id, ch := e.cfg.Subscribe()
	defer e.cfg.Unsubscribe(id)

	if e.cfg.Loaded() {
		e.Apply(ctx, e.cfg.Snapshot())
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cfg, ok := <-ch:
			if !ok {
				return nil
			}
			e.Apply(ctx, cfg)
		}
	}
}

// Mode returns the current theme mode
func (e *Engine) Mode() domain.Theme {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// Vars returns the effective variables for the current mode
func (e *Engine) Vars() Variables {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return merge(e.palette[e.mode], e.overlay[e.mode])
}

// VarsFor returns the effective variables for mode
func (e *Engine) VarsFor(mode domain.Theme) Variables {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return merge(e.palette[mode], e.overlay[mode])
}

// Palette returns the resolved colours for the current mode
func (e *Engine) Palette() Palette {
	return paletteFrom(e.Vars())
}

// Background returns the current background image
func (e *Engine) Background() Background {
	e.bgMu.RLock()
	defer e.bgMu.RUnlock()
	return e.background
}

// State returns a snapshot of everything the engine publishes
func (e *Engine) State() State {
	e.mu.RLock()
	st := State{
		Mode:    e.mode,
		Opacity: e.opacity,
		Blur:    e.blur,
		Accent:  e.accent.Hex(),
		Vars:    merge(e.palette[e.mode], e.overlay[e.mode]),
	}
	e.mu.RUnlock()
	st.Background = e.Background()
	return st
}

// SubscribeMode returns a channel that receives every mode change
func (e *Engine) SubscribeMode() (string, <-chan domain.Theme) {
	return e.modes.Subscribe()
}

// UnsubscribeMode releases a subscription made with SubscribeMode
func (e *Engine) UnsubscribeMode(id string) {
	e.modes.Unsubscribe(id)
}

// SubscribeBackground returns a channel that receives every new background
func (e *Engine) SubscribeBackground() (string, <-chan Background) {
	return e.backgrounds.Subscribe()
}

// UnsubscribeBackground releases a subscription made with SubscribeBackground
func (e *Engine) UnsubscribeBackground(id string) {
	e.backgrounds.Unsubscribe(id)
}

func (e *Engine) configuredAccent() colorful.Color {
	if e.cfg != nil && e.cfg.Loaded() {
		if ui := e.cfg.Snapshot().UIConfig; ui != nil && ui.AccentColor != "" {
			return ParseAccent(ui.AccentColor)
		}
	}
	return ParseAccent(domain.DefaultAccentColor)
}
