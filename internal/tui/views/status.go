package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"barobaro/internal/domain"
)

// DetectGameHomeMsg asks to locate Barotrauma in the Steam libraries
type DetectGameHomeMsg struct{}

// StatusData is what the status view shows
type StatusData struct {
	Config    domain.Config
	Loaded    bool
	InitErr   error
	Build     *domain.BuildInfo
	Installed int
	Enabled   int
	Profiles  int
	Language  domain.Language
	Theme     domain.Theme
}

// Status summarises the backend connection and configuration
type Status struct {
	data   StatusData
	styles *Styles
	width  int
	height int
}

// NewStatus creates a status view
func NewStatus(data StatusData, styles *Styles) Status {
	return Status{
		data:   data,
		styles: defaultStyles(styles),
		width:  80,
		height: 24,
	}
}

// SetData replaces the shown status
func (s Status) SetData(data StatusData) Status {
	s.data = data
	return s
}

// Init implements tea.Model
func (s Status) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s Status) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "d":
			return s, emit(DetectGameHomeMsg{})
		case "r":
			return s, emit(RefreshMsg{})
		}

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	return s, nil
}

// View implements tea.Model
func (s Status) View() string {
	st := s.styles
	d := s.data
	var b strings.Builder

	b.WriteString(st.Title.Render("Barotrauma") + "\n\n")

	if d.InitErr != nil {
		b.WriteString(st.Error.Render(fmt.Sprintf("Backend unavailable: %v", d.InitErr)) + "\n")
		b.WriteString(st.Info.Render("Running with default settings. Press r to retry.") + "\n\n")
	}

	field := func(name, value string) {
		if value == "" {
			value = st.Warning.Render("not set")
		} else {
			value = st.Value.Render(value)
		}
		b.WriteString(st.Item.Render(name+": ") + value + "\n")
	}

	if d.Loaded {
		field("Game home", d.Config.GameHome)
		field("SteamCMD home", d.Config.SteamCmdHome)
		b.WriteString(st.Detail.Render(st.Sprintf("Metadata batch size: %d", d.Config.BatchSize())) + "\n\n")
	} else if d.InitErr == nil {
		b.WriteString(st.Info.Render("Loading configuration...") + "\n\n")
	}

	b.WriteString(st.Item.Render(st.Sprintf("Installed: %d  Enabled: %d  Profiles: %d", d.Installed, d.Enabled, d.Profiles)) + "\n")
	b.WriteString(st.Item.Render(fmt.Sprintf("Language: %s  Theme: %s", d.Language, d.Theme)) + "\n")

	if d.Build != nil {
		b.WriteString(st.Detail.Render(fmt.Sprintf("Backend %s (%s, %s)", d.Build.Version, d.Build.Commit, d.Build.Date)) + "\n")
	}

	b.WriteString(st.Help.Render("d: detect game home  r: refresh"))
	return b.String()
}
