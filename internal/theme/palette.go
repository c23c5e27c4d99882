package theme

import (
	"fmt"
	"maps"

	colorful "github.com/lucasb-eyer/go-colorful"

	"barobaro/internal/domain"
)

// Variables maps CSS custom property names to values
type Variables map[string]string

// CSS custom properties published for each mode
const (
	VarBackground     = "--bb-background"
	VarSurface        = "--bb-surface"
	VarText           = "--bb-text"
	VarTextMuted      = "--bb-text-muted"
	VarBorder         = "--bb-border"
	VarAccent         = "--bb-accent"
	VarAccentHover    = "--bb-accent-hover"
	VarAccentPressed  = "--bb-accent-pressed"
	VarOverlay        = "--bb-overlay"
	VarOverlayOpacity = "--bb-overlay-opacity"
	VarBackgroundBlur = "--bb-background-blur"
)

// base colours per mode
type base struct {
	background colorful.Color
	surface    colorful.Color
	text       colorful.Color
	muted      colorful.Color
	border     colorful.Color
}

var bases = map[domain.Theme]base{
	domain.ThemeDark: {
		background: mustHex("#101014"),
		surface:    mustHex("#18181c"),
		text:       mustHex("#e8e8ea"),
		muted:      mustHex("#9a9aa1"),
		border:     mustHex("#2c2c32"),
	},
	domain.ThemeLight: {
		background: mustHex("#ffffff"),
		surface:    mustHex("#f7f7fa"),
		text:       mustHex("#1f2225"),
		muted:      mustHex("#667085"),
		border:     mustHex("#e0e0e6"),
	},
}

// Modes lists every theme mode a palette is computed for
var Modes = []domain.Theme{domain.ThemeDark, domain.ThemeLight}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseAccent parses a #rrggbb accent colour, falling back to the default
func ParseAccent(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return mustHex(domain.DefaultAccentColor)
	}
	return c
}

// paletteVars computes the mode- and accent-dependent variables
func paletteVars(mode domain.Theme, accent colorful.Color) Variables {
	b, ok := bases[mode]
	if !ok {
		b = bases[domain.ThemeLight]
	}

	hover, pressed := accent.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.15), accent.BlendLab(colorful.Color{}, 0.15)
	if mode == domain.ThemeDark {
		// lift the accent so it reads on a dark background
		hover, pressed = accent.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.25), accent.BlendLab(colorful.Color{}, 0.1)
	}

	return Variables{
		VarBackground:    b.background.Hex(),
		VarSurface:       b.surface.Hex(),
		VarText:          b.text.Hex(),
		VarTextMuted:     b.muted.Hex(),
		VarBorder:        b.border.Hex(),
		VarAccent:        accent.Clamped().Hex(),
		VarAccentHover:   hover.Clamped().Hex(),
		VarAccentPressed: pressed.Clamped().Hex(),
	}
}

// overlayVars computes the opacity-dependent variables
func overlayVars(mode domain.Theme, opacity float64, blur uint32) Variables {
	b, ok := bases[mode]
	if !ok {
		b = bases[domain.ThemeLight]
	}
	opacity = clamp01(opacity)
	r, g, bl := b.background.RGB255()
	return Variables{
		VarOverlay:        fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, bl, opacity),
		VarOverlayOpacity: fmt.Sprintf("%.2f", opacity),
		VarBackgroundBlur: fmt.Sprintf("%dpx", blur),
	}
}

func merge(parts ...Variables) Variables {
	out := make(Variables)
	for _, p := range parts {
		maps.Copy(out, p)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Palette is the resolved colour set for one mode, for non-CSS renderers
type Palette struct {
	Background string
	Surface    string
	Text       string
	Muted      string
	Border     string
	Accent     string
}

func paletteFrom(v Variables) Palette {
	return Palette{
		Background: v[VarBackground],
		Surface:    v[VarSurface],
		Text:       v[VarText],
		Muted:      v[VarTextMuted],
		Border:     v[VarBorder],
		Accent:     v[VarAccent],
	}
}

// DefaultPalette returns the palette for mode with the default accent
func DefaultPalette(mode domain.Theme) Palette {
	return paletteFrom(paletteVars(mode, ParseAccent(domain.DefaultAccentColor)))
}
