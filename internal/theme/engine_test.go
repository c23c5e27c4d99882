package theme_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/gateway/gatewaytest"
	"barobaro/internal/store"
	"barobaro/internal/theme"
)

type memPrefs struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMemPrefs() *memPrefs {
	return &memPrefs{vals: make(map[string]string)}
}

func (p *memPrefs) GetPreference(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.vals[key]
	return v, ok, nil
}

func (p *memPrefs) SetPreference(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vals[key] = value
	return nil
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return theme.DataURI("image/png", buf.Bytes())
}

func configured(t *testing.T, mutate func(*domain.Config)) (*store.ConfigStore, *gatewaytest.Fake) {
	t.Helper()
	cfg := domain.DefaultConfig()
	cfg.GameHome = "/games/Barotrauma"
	cfg.SteamCmdHome = "/opt/steamcmd"
	if mutate != nil {
		mutate(&cfg)
	}
	fake := gatewaytest.New().Reply(gateway.CmdReadConfig, cfg)
	s := store.NewConfigStore(fake, zerolog.Nop())
	require.NoError(t, s.Refresh(context.Background()))
	return s, fake
}

func TestEngine_InitialState(t *testing.T) {
	e := theme.New(nil, gatewaytest.New(), nil, zerolog.Nop())

	st := e.State()
	assert.Equal(t, domain.ThemeLight, st.Mode)
	assert.Zero(t, st.Opacity)
	assert.True(t, st.Background.Empty())
	assert.Equal(t, "0.00", st.Vars[theme.VarOverlayOpacity])
	assert.Equal(t, "#ffffff", st.Vars[theme.VarBackground])
}

func TestEngine_DarkAndOpacityInEitherOrder(t *testing.T) {
	ctx := context.Background()
	cfgStore, _ := configured(t, func(c *domain.Config) {
		c.UIConfig.BackgroundOpacity = 0.35
	})

	orders := map[string]func(e *theme.Engine){
		"theme then transparent": func(e *theme.Engine) {
			e.SetTheme(ctx, domain.ThemeDark)
			e.SetTransparent()
		},
		"transparent then theme": func(e *theme.Engine) {
			e.SetTransparent()
			e.SetTheme(ctx, domain.ThemeDark)
		},
	}

	for name, run := range orders {
		t.Run(name, func(t *testing.T) {
			e := theme.New(cfgStore, gatewaytest.New(), nil, zerolog.Nop())
			run(e)

			vars := e.Vars()
			assert.Equal(t, domain.ThemeDark, e.Mode())
			assert.Equal(t, "#101014", vars[theme.VarBackground])
			assert.Equal(t, "0.35", vars[theme.VarOverlayOpacity])
			assert.Equal(t, "rgba(16, 16, 20, 0.35)", vars[theme.VarOverlay])
		})
	}
}

func TestEngine_BothModesPrecomputed(t *testing.T) {
	cfgStore, _ := configured(t, func(c *domain.Config) {
		c.UIConfig.BackgroundOpacity = 0.5
	})
	e := theme.New(cfgStore, gatewaytest.New(), nil, zerolog.Nop())
	e.SetTransparent()

	light := e.VarsFor(domain.ThemeLight)
	dark := e.VarsFor(domain.ThemeDark)
	assert.Equal(t, "0.50", light[theme.VarOverlayOpacity])
	assert.Equal(t, "0.50", dark[theme.VarOverlayOpacity])
	assert.NotEqual(t, light[theme.VarBackground], dark[theme.VarBackground])
}

func TestEngine_AccentFromConfig(t *testing.T) {
	cfgStore, _ := configured(t, func(c *domain.Config) {
		c.UIConfig.AccentColor = "#ff0000"
	})
	e := theme.New(cfgStore, gatewaytest.New(), nil, zerolog.Nop())
	e.SetTheme(context.Background(), domain.ThemeLight)

	assert.Equal(t, "#ff0000", e.Vars()[theme.VarAccent])
	assert.Equal(t, "#ff0000", e.Palette().Accent)
	assert.NotEqual(t, "#ff0000", e.Vars()[theme.VarAccentHover])
}

func TestEngine_InvalidAccentFallsBack(t *testing.T) {
	cfgStore, _ := configured(t, func(c *domain.Config) {
		c.UIConfig.AccentColor = "blue-ish"
	})
	e := theme.New(cfgStore, gatewaytest.New(), nil, zerolog.Nop())
	e.SetTheme(context.Background(), domain.ThemeDark)

	assert.Equal(t, domain.DefaultAccentColor, e.Vars()[theme.VarAccent])
}

func TestEngine_SetThemePersistsAndBroadcasts(t *testing.T) {
	prefs := newMemPrefs()
	e := theme.New(nil, gatewaytest.New(), prefs, zerolog.Nop())
	id, ch := e.SubscribeMode()
	defer e.UnsubscribeMode(id)

	e.SetTheme(context.Background(), domain.ThemeDark)

	assert.Equal(t, domain.ThemeDark, <-ch)
	v, ok, _ := prefs.GetPreference(context.Background(), theme.PreferenceKey)
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestEngine_Bootstrap(t *testing.T) {
	prefs := newMemPrefs()
	require.NoError(t, prefs.SetPreference(context.Background(), theme.PreferenceKey, "dark"))

	e := theme.New(nil, gatewaytest.New(), prefs, zerolog.Nop())
	e.Bootstrap(context.Background())
	assert.Equal(t, domain.ThemeDark, e.Mode())
}

func TestEngine_TransparentWithoutConfig(t *testing.T) {
	cfgStore := store.NewConfigStore(gatewaytest.New(), zerolog.Nop())
	e := theme.New(cfgStore, gatewaytest.New(), nil, zerolog.Nop())
	e.SetTransparent()

	assert.Zero(t, e.State().Opacity)
	assert.Equal(t, domain.ThemeLight, e.Mode())
}

func TestEngine_SetBackgroundImage(t *testing.T) {
	uri := pngDataURI(t, 4, 3)
	fake := gatewaytest.New().Reply(gateway.CmdGetBackgroundImage, uri)
	e := theme.New(nil, fake, nil, zerolog.Nop())
	id, ch := e.SubscribeBackground()
	defer e.UnsubscribeBackground(id)

	require.NoError(t, e.SetBackgroundImage(context.Background()))

	bg := e.Background()
	assert.Equal(t, uri, bg.URI)
	assert.Equal(t, "png", bg.Format)
	assert.Equal(t, 4, bg.Width)
	assert.Equal(t, 3, bg.Height)
	assert.Equal(t, bg, <-ch)
}

func TestEngine_BackgroundFailureKeepsPrevious(t *testing.T) {
	uri := pngDataURI(t, 2, 2)
	fake := gatewaytest.New().Reply(gateway.CmdGetBackgroundImage, uri)
	e := theme.New(nil, fake, nil, zerolog.Nop())
	require.NoError(t, e.SetBackgroundImage(context.Background()))

	fake.Fail(gateway.CmdGetBackgroundImage, errors.New("image missing"))
	err := <-e.LoadBackgroundImage(context.Background())
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, uri, e.Background().URI)

	fake.Reply(gateway.CmdGetBackgroundImage, "data:image/png;base64,bm90IGFuIGltYWdl")
	require.Error(t, e.SetBackgroundImage(context.Background()))
	assert.Equal(t, uri, e.Background().URI)
}

func TestEngine_NoBackgroundClearsImage(t *testing.T) {
	fake := gatewaytest.New().Reply(gateway.CmdGetBackgroundImage, pngDataURI(t, 1, 1))
	e := theme.New(nil, fake, nil, zerolog.Nop())
	require.NoError(t, e.SetBackgroundImage(context.Background()))

	fake.Reply(gateway.CmdGetBackgroundImage, nil)
	require.NoError(t, e.SetBackgroundImage(context.Background()))
	assert.True(t, e.Background().Empty())
}

func TestEngine_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgStore, fake := configured(t, func(c *domain.Config) {
		c.UIConfig.Theme = domain.ThemeDark
		c.UIConfig.BackgroundOpacity = 0.4
	})
	fake.Reply(gateway.CmdGetBackgroundImage, nil)
	fake.Reply(gateway.CmdWriteConfig, nil)

	e := theme.New(cfgStore, fake, nil, zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx) }()

	assert.Eventually(t, func() bool {
		return e.Mode() == domain.ThemeDark && e.State().Opacity == 0.4
	}, time.Second, 5*time.Millisecond)

	ui := *cfgStore.Snapshot().UIConfig
	ui.Theme = domain.ThemeLight
	_, err := cfgStore.UpdateUIConfig(ctx, ui)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return e.Mode() == domain.ThemeLight
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
