package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/locale"
	"barobaro/internal/reconcile"
	"barobaro/internal/store"
	"barobaro/internal/theme"
)

// Preferences is local fast-access storage read before the backend answers
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Options configures an App
type Options struct {
	Gateway   gateway.Gateway
	Prefs     Preferences      // optional
	Localizer locale.Localizer // optional
	Logger    zerolog.Logger
}

// App is the process-wide client state. It is built once at startup and
// handed to every surface (CLI, TUI) that needs it.
type App struct {
	Config     *store.ConfigStore
	Installed  *store.ModStore
	Enabled    *store.ModStore
	Profiles   *store.ProfileStore
	Reconciler *reconcile.Reconciler
	Theme      *theme.Engine
	Locale     *locale.Resolver

	gw  gateway.Gateway
	log zerolog.Logger

	initMu      sync.Mutex // serialises Initialize
	mu          sync.Mutex
	initialized bool
	initErr     error
	language    domain.Language
}

// New wires every store and engine around one gateway
func New(opts Options) *App {
	log := opts.Logger
	gw := opts.Gateway

	cfg := store.NewConfigStore(gw, log)
	installed := store.NewModStore(store.Installed, gw, log)
	enabled := store.NewModStore(store.Enabled, gw, log)

	var prefs theme.Preferences
	var localePrefs locale.Preferences
	if opts.Prefs != nil {
		prefs, localePrefs = opts.Prefs, opts.Prefs
	}

	return &App{
		Config:     cfg,
		Installed:  installed,
		Enabled:    enabled,
		Profiles:   store.NewProfileStore(gw, log),
		Reconciler: reconcile.New(installed, enabled, gw, log),
		Theme:      theme.New(cfg, gw, prefs, log),
		Locale:     locale.NewResolver(localePrefs, opts.Localizer, log),
		gw:         gw,
		log:        log.With().Str("component", "app").Logger(),
		language:   domain.LanguageEN,
	}
}

// Gateway returns the backend gateway shared by the stores
func (a *App) Gateway() gateway.Gateway {
	return a.gw
}

// Bootstrap applies locally stored theme and locale so the first frame
// does not flash defaults while the backend loads.
func (a *App) Bootstrap(ctx context.Context) {
	a.Theme.Bootstrap(ctx)
	lang := a.Locale.Bootstrap(ctx)

	a.mu.Lock()
	a.language = lang
	a.mu.Unlock()
}

// Initialize loads the configuration, resolves the locale and drives the
// theme from it. It runs once; later calls return immediately.
// Failure is not fatal: the app falls back to English and Light mode,
// records the error in InitError and returns it for reporting.
func (a *App) Initialize(ctx context.Context) error {
	a.initMu.Lock()
	defer a.initMu.Unlock()
	if a.Initialized() {
		return nil
	}

	if err := a.Config.Refresh(ctx); err != nil {
		a.Theme.Fallback()
		lang := a.Locale.Resolve(ctx, nil)

		a.mu.Lock()
		a.initErr = err
		a.language = lang
		a.mu.Unlock()

		a.log.Warn().Err(err).Msg("initialization failed, using defaults")
		return err
	}

	lang := a.ResolveLocale(ctx)
	a.Theme.Apply(ctx, a.Config.Snapshot())

	a.mu.Lock()
	a.initialized = true
	a.initErr = nil
	a.mu.Unlock()

	if a.Config.Snapshot().UIConfig == nil {
		a.log.Warn().Msg("no UI config found, using defaults")
	}
	a.log.Info().Str("language", lang.Code()).Str("theme", a.Theme.Mode().String()).Msg("initialized")
	return nil
}

// ResolveLocale installs the language from the current configuration and
// returns it. Call again after the UI configuration changes.
func (a *App) ResolveLocale(ctx context.Context) domain.Language {
	lang := a.Locale.Resolve(ctx, a.Config)

	a.mu.Lock()
	a.language = lang
	a.mu.Unlock()
	return lang
}

// Initialized reports whether Initialize has succeeded
func (a *App) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// InitError returns the error from the last failed Initialize, if any
func (a *App) InitError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initErr
}

// Language returns the resolved interface language
func (a *App) Language() domain.Language {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.language
}

// RefreshAll refreshes the installed, enabled and profile collections
// concurrently. Each store keeps its previous contents on failure.
func (a *App) RefreshAll(ctx context.Context) error {
	refreshers := []func(context.Context) error{
		a.Installed.Refresh,
		a.Enabled.Refresh,
		a.Profiles.Refresh,
	}

	errs := make([]error, len(refreshers))
	var wg sync.WaitGroup
	for i, refresh := range refreshers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = refresh(ctx)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// RetrieveMetadata asks the backend for Workshop metadata on every known
// mod and merges the result into both collections. Call after both mod
// collections have refreshed.
func (a *App) RetrieveMetadata(ctx context.Context) (reconcile.Result, error) {
	mods := knownMods(a.Installed.Mods(), a.Enabled.Mods())
	batch := a.Config.Snapshot().BatchSize()

	res, err := a.Reconciler.Retrieve(ctx, mods, batch)
	if err != nil {
		return res, fmt.Errorf("retrieving metadata: %w", err)
	}
	return res, nil
}

// knownMods returns the union of both collections, first occurrence wins
func knownMods(installed, enabled []domain.Mod) []domain.Mod {
	seen := make(map[domain.WorkshopID]bool, len(installed)+len(enabled))
	out := make([]domain.Mod, 0, len(installed)+len(enabled))
	for _, list := range [][]domain.Mod{installed, enabled} {
		for _, m := range list {
			if seen[m.SteamWorkshopID] {
				continue
			}
			seen[m.SteamWorkshopID] = true
			out = append(out, m)
		}
	}
	return out
}

// WatchTheme keeps the theme engine in step with the configuration until
// ctx is done
func (a *App) WatchTheme(ctx context.Context) error {
	return a.Theme.Watch(ctx)
}
