// Package locale resolves the interface language from the configuration.
//
// Resolution runs once at startup. Changing the language later means
// calling Resolve again; nothing here reacts to configuration changes.
package locale

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"barobaro/internal/domain"
)

// PreferenceKey is the local preference holding the last active locale
const PreferenceKey = "locale"

// supported is ordered so the matcher falls back to English
var supported = []language.Tag{language.English, language.Chinese}

var matcher = language.NewMatcher(supported)

// ConfigSource is the read side of the configuration store
type ConfigSource interface {
	Snapshot() domain.Config
	Loaded() bool
}

// Preferences is local fast-access storage available before the backend answers
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Localizer is the localisation subsystem the resolved locale is installed into
type Localizer interface {
	SetLanguage(lang domain.Language)
}

// Tag returns the BCP 47 tag for lang
func Tag(lang domain.Language) language.Tag {
	if lang == domain.LanguageZH {
		return language.Chinese
	}
	return language.English
}

// Match maps an arbitrary locale string (en-US, zh_TW, zh-Hans-CN...) to the
// closest supported language. Anything unparseable is English.
func Match(s string) domain.Language {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" {
		return domain.LanguageEN
	}
	tag, err := language.Parse(s)
	if err != nil {
		return domain.ParseLanguage(s)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return domain.LanguageEN
	}
	if supported[idx] == language.Chinese {
		return domain.LanguageZH
	}
	return domain.LanguageEN
}

// FromConfig returns the configured language, or English when the
// configuration has not loaded or carries no UI section.
func FromConfig(cfg ConfigSource) domain.Language {
	if cfg == nil || !cfg.Loaded() {
		return domain.LanguageEN
	}
	ui := cfg.Snapshot().UIConfig
	if ui == nil {
		return domain.LanguageEN
	}
	return ui.Language
}

// Resolver installs the configured language into a Localizer
type Resolver struct {
	prefs Preferences
	loc   Localizer
	log   zerolog.Logger
}

// NewResolver creates a resolver. prefs and loc may be nil.
func NewResolver(prefs Preferences, loc Localizer, log zerolog.Logger) *Resolver {
	return &Resolver{
		prefs: prefs,
		loc:   loc,
		log:   log.With().Str("component", "locale").Logger(),
	}
}

// Bootstrap installs the locale stored by the previous run, if any.
// It returns the language installed.
func (r *Resolver) Bootstrap(ctx context.Context) domain.Language {
	lang := domain.LanguageEN
	if r.prefs != nil {
		v, ok, err := r.prefs.GetPreference(ctx, PreferenceKey)
		if err != nil {
			r.log.Warn().Err(err).Msg("reading stored locale")
		} else if ok {
			lang = Match(v)
		}
	}
	r.install(lang)
	return lang
}

// Resolve reads the language from cfg, installs it and stores it locally
func (r *Resolver) Resolve(ctx context.Context, cfg ConfigSource) domain.Language {
	lang := FromConfig(cfg)
	r.install(lang)
	if r.prefs != nil {
		if err := r.prefs.SetPreference(ctx, PreferenceKey, lang.Code()); err != nil {
			r.log.Warn().Err(err).Msg("storing locale")
		}
	}
	r.log.Debug().Str("language", lang.Code()).Msg("locale resolved")
	return lang
}

func (r *Resolver) install(lang domain.Language) {
	if r.loc != nil {
		r.loc.SetLanguage(lang)
	}
}

// Printer is a Localizer that formats numbers for the active language
type Printer struct {
	mu   sync.RWMutex
	lang domain.Language
	p    *message.Printer
}

// NewPrinter creates a printer for English
func NewPrinter() *Printer {
	return &Printer{lang: domain.LanguageEN, p: message.NewPrinter(language.English)}
}

// SetLanguage implements Localizer
func (p *Printer) SetLanguage(lang domain.Language) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lang = lang
	p.p = message.NewPrinter(Tag(lang))
}

// Language returns the active language
func (p *Printer) Language() domain.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

// Sprintf formats according to the active language
func (p *Printer) Sprintf(format string, args ...any) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.p.Sprintf(format, args...)
}
