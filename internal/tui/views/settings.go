package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"barobaro/internal/domain"
)

// SettingsData holds the editable settings. Theme, Language and Opacity
// live in the backend configuration; Keybindings is local.
type SettingsData struct {
	Theme       domain.Theme
	Language    domain.Language
	Opacity     float64
	Keybindings string
}

// SettingsChangedMsg is sent when a setting is modified
type SettingsChangedMsg struct {
	Settings SettingsData
}

var opacitySteps = []float64{0, 0.2, 0.4, 0.6, 0.8}

type settingItem struct {
	name        string
	description string
	options     []string
	current     int
}

// Settings is the settings view
type Settings struct {
	settings SettingsData
	items    []settingItem
	selected int
	styles   *Styles
	width    int
	height   int
}

// NewSettings creates a settings view
func NewSettings(settings SettingsData, styles *Styles) Settings {
	themeIdx := 0
	if settings.Theme == domain.ThemeDark {
		themeIdx = 1
	}
	langIdx := 0
	if settings.Language == domain.LanguageZH {
		langIdx = 1
	}
	keyIdx := 0
	if settings.Keybindings == "standard" {
		keyIdx = 1
	}

	opacity := make([]string, len(opacitySteps))
	opacityIdx := 0
	for i, v := range opacitySteps {
		opacity[i] = fmt.Sprintf("%.0f%%", v*100)
		if settings.Opacity >= v-0.05 {
			opacityIdx = i
		}
	}

	items := []settingItem{
		{name: "Theme", description: "Colour scheme", options: []string{"Light", "Dark"}, current: themeIdx},
		{name: "Language", description: "Interface language", options: []string{"English", "简体中文"}, current: langIdx},
		{name: "Background opacity", description: "Overlay opacity over the background image", options: opacity, current: opacityIdx},
		{name: "Keybindings", description: "Keyboard navigation style", options: []string{"vim", "standard"}, current: keyIdx},
	}

	return Settings{
		settings: settings,
		items:    items,
		styles:   defaultStyles(styles),
		width:    80,
		height:   24,
	}
}

// Selected returns the currently selected setting index
func (s Settings) Selected() int {
	return s.selected
}

// CurrentSettings returns the current settings values
func (s Settings) CurrentSettings() SettingsData {
	return s.settings
}

// Init implements tea.Model
func (s Settings) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s Settings) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil
	}

	return s, nil
}

func (s Settings) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		s.selected--
		if s.selected < 0 {
			s.selected = len(s.items) - 1
		}
		return s, nil

	case "down", "j":
		s.selected++
		if s.selected >= len(s.items) {
			s.selected = 0
		}
		return s, nil

	case "enter", " ", "right", "l":
		return s.cycle(1)

	case "left", "h":
		return s.cycle(-1)
	}

	return s, nil
}

func (s Settings) cycle(step int) (tea.Model, tea.Cmd) {
	// items is shared with the previous model value
	s.items = append([]settingItem(nil), s.items...)
	item := &s.items[s.selected]
	n := len(item.options)
	item.current = ((item.current+step)%n + n) % n
	s.applySettings()
	return s, emit(SettingsChangedMsg{Settings: s.settings})
}

func (s *Settings) applySettings() {
	s.settings.Theme = domain.ThemeLight
	if s.items[0].current == 1 {
		s.settings.Theme = domain.ThemeDark
	}
	s.settings.Language = domain.LanguageEN
	if s.items[1].current == 1 {
		s.settings.Language = domain.LanguageZH
	}
	s.settings.Opacity = opacitySteps[s.items[2].current]
	s.settings.Keybindings = s.items[3].options[s.items[3].current]
}

// View implements tea.Model
func (s Settings) View() string {
	st := s.styles
	var b strings.Builder

	b.WriteString(st.Title.Render("Settings") + "\n\n")

	for i, item := range s.items {
		cursor := "  "
		style := st.Item
		if i == s.selected {
			cursor = "▸ "
			style = st.Selected
		}

		line := fmt.Sprintf("%s%s: %s", cursor, item.name, st.Value.Render(item.options[item.current]))
		b.WriteString(style.Render(line) + "\n")
		b.WriteString(st.Detail.Render(item.description) + "\n")

		if i == s.selected {
			b.WriteString("    Options: ")
			for j, opt := range item.options {
				if j == item.current {
					b.WriteString(st.Value.Render("[" + opt + "]"))
				} else {
					b.WriteString(st.Info.Render(" " + opt + " "))
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(st.Help.Render("↑/↓: navigate  ←/→ or enter: change value"))
	return b.String()
}
