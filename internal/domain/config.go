package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Theme is the two-valued UI theme mode
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

func (t Theme) String() string {
	switch t {
	case ThemeDark:
		return "dark"
	case ThemeLight:
		return "light"
	default:
		return "unknown"
	}
}

// ParseTheme converts a string to Theme. Anything unrecognised is Light.
func ParseTheme(s string) Theme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return ThemeDark
	default:
		return ThemeLight
	}
}

// MarshalJSON encodes the numeric wire value
func (t Theme) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(t))
}

// UnmarshalJSON accepts the numeric wire value or the enum name
func (t *Theme) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n != int(ThemeDark) && n != int(ThemeLight) {
			*t = ThemeLight
			return nil
		}
		*t = Theme(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	*t = ParseTheme(s)
	return nil
}

// Language is the interface language
type Language int

const (
	LanguageEN Language = iota
	LanguageZH
)

// Code returns the locale code used by the localisation layer
func (l Language) Code() string {
	switch l {
	case LanguageZH:
		return "zh"
	default:
		return "en"
	}
}

func (l Language) String() string {
	return l.Code()
}

// ParseLanguage converts a locale code or enum name to Language. Unknown values are English.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zh", "zh-cn", "zh-hans", "chinese":
		return LanguageZH
	default:
		return LanguageEN
	}
}

// MarshalJSON encodes the numeric wire value
func (l Language) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(l))
}

// UnmarshalJSON accepts the numeric wire value or the enum name
func (l *Language) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n != int(LanguageZH) {
			n = int(LanguageEN)
		}
		*l = Language(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("language: %w", err)
	}
	*l = ParseLanguage(s)
	return nil
}

// LogLevel mirrors the backend's log level setting
type LogLevel int

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogTrace:
		return "trace"
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLogLevel converts a level name to LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LogTrace, nil
	case "debug":
		return LogDebug, nil
	case "info":
		return LogInfo, nil
	case "warn", "warning":
		return LogWarn, nil
	case "error":
		return LogError, nil
	default:
		return LogInfo, fmt.Errorf("%w: unknown log level %q", ErrValidation, s)
	}
}

// UIConfig holds presentation preferences
type UIConfig struct {
	Theme             Theme    `json:"theme"`
	Language          Language `json:"language"`
	AccentColor       string   `json:"accentColor"`
	BackgroundImage   string   `json:"backgroundImage"`
	BackgroundOpacity float64  `json:"backgroundOpacity"`
	BackgroundBlur    uint32   `json:"backgroundBlur"`
}

// SteamCmdConfig configures the SteamCMD tool used by the backend for downloads
type SteamCmdConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Parallel uint32 `json:"parallel"`
}

// Config is the backend-owned application configuration.
// GameHome and SteamCmdHome are required and never cleared by a partial update.
type Config struct {
	LogLevel                  LogLevel        `json:"loglevel"`
	GameHome                  string          `json:"gameHome"`
	SteamCmdHome              string          `json:"steamcmdHome"`
	SteamCmdConfig            *SteamCmdConfig `json:"steamcmdConfig,omitempty"`
	UIConfig                  *UIConfig       `json:"uiConfig,omitempty"`
	MetadataRetrieveBatchSize int             `json:"metadataRetrieveBatchsize"`
}

const (
	DefaultAccentColor       = "#0969da"
	DefaultBackgroundOpacity = 0.2
	DefaultBackgroundBlur    = 5
	DefaultParallel          = 3
	DefaultBatchSize         = 20
)

// DefaultConfig mirrors the backend's default settings
func DefaultConfig() Config {
	return Config{
		LogLevel: LogInfo,
		SteamCmdConfig: &SteamCmdConfig{
			Parallel: DefaultParallel,
		},
		UIConfig: &UIConfig{
			Theme:             ThemeDark,
			Language:          LanguageEN,
			AccentColor:       DefaultAccentColor,
			BackgroundOpacity: DefaultBackgroundOpacity,
			BackgroundBlur:    DefaultBackgroundBlur,
		},
		MetadataRetrieveBatchSize: DefaultBatchSize,
	}
}

// Clone returns a deep copy so that snapshots never share sub-records
func (c Config) Clone() Config {
	out := c
	if c.SteamCmdConfig != nil {
		sc := *c.SteamCmdConfig
		out.SteamCmdConfig = &sc
	}
	if c.UIConfig != nil {
		ui := *c.UIConfig
		out.UIConfig = &ui
	}
	return out
}

// BatchSize returns the metadata retrieval batch size, falling back to the default when unset
func (c Config) BatchSize() int {
	if c.MetadataRetrieveBatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.MetadataRetrieveBatchSize
}

// ConfigPatch is a partial configuration update. Nil fields keep the current value.
type ConfigPatch struct {
	LogLevel                  *LogLevel
	GameHome                  *string
	SteamCmdHome              *string
	SteamCmdConfig            *SteamCmdConfig
	UIConfig                  *UIConfig
	MetadataRetrieveBatchSize *int
}

// Validate checks the patch's own preconditions
func (p ConfigPatch) Validate() error {
	if p.MetadataRetrieveBatchSize != nil && *p.MetadataRetrieveBatchSize <= 0 {
		return fmt.Errorf("%w: metadata batch size must be > 0, got %d", ErrValidation, *p.MetadataRetrieveBatchSize)
	}
	if p.UIConfig != nil {
		if o := p.UIConfig.BackgroundOpacity; o < 0 || o > 1 {
			return fmt.Errorf("%w: background opacity must be within [0,1], got %g", ErrValidation, o)
		}
	}
	return nil
}

// Merge applies the patch over current. An empty GameHome or SteamCmdHome in the
// patch never clears the current value.
func (p ConfigPatch) Merge(current Config) Config {
	merged := current.Clone()
	if p.LogLevel != nil {
		merged.LogLevel = *p.LogLevel
	}
	if p.GameHome != nil && *p.GameHome != "" {
		merged.GameHome = *p.GameHome
	}
	if p.SteamCmdHome != nil && *p.SteamCmdHome != "" {
		merged.SteamCmdHome = *p.SteamCmdHome
	}
	if p.SteamCmdConfig != nil {
		sc := *p.SteamCmdConfig
		merged.SteamCmdConfig = &sc
	}
	if p.UIConfig != nil {
		ui := *p.UIConfig
		merged.UIConfig = &ui
	}
	if p.MetadataRetrieveBatchSize != nil {
		merged.MetadataRetrieveBatchSize = *p.MetadataRetrieveBatchSize
	}
	return merged
}
