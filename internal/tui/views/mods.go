package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"barobaro/internal/core"
	"barobaro/internal/domain"
)

// ToggleModMsg asks to add or remove a mod from the active profile
type ToggleModMsg struct {
	ModID domain.WorkshopID
}

// RetrieveMetadataMsg asks to refresh Workshop metadata for every known mod
type RetrieveMetadataMsg struct{}

// RefreshMsg asks to reload every collection from the backend
type RefreshMsg struct{}

// Mods lists one mod collection and marks members of the active profile
type Mods struct {
	title    string
	mods     []domain.Mod
	active   *domain.ModList
	selected int
	styles   *Styles
	width    int
	height   int
}

// NewMods creates a mod list view. active may be nil.
func NewMods(title string, mods []domain.Mod, active *domain.ModList, styles *Styles) Mods {
	return Mods{
		title:  title,
		mods:   mods,
		active: active,
		styles: defaultStyles(styles),
		width:  80,
		height: 24,
	}
}

// SetMods replaces the listed mods and active profile, keeping the
// selection in range
func (m Mods) SetMods(mods []domain.Mod, active *domain.ModList) Mods {
	m.mods = mods
	m.active = active
	if m.selected >= len(m.mods) {
		m.selected = max(len(m.mods)-1, 0)
	}
	return m
}

// Selected returns the currently selected index
func (m Mods) Selected() int {
	return m.selected
}

// ModCount returns the number of listed mods
func (m Mods) ModCount() int {
	return len(m.mods)
}

// SelectedMod returns the currently selected mod
func (m Mods) SelectedMod() *domain.Mod {
	if len(m.mods) == 0 || m.selected >= len(m.mods) {
		return nil
	}
	return &m.mods[m.selected]
}

// Init implements tea.Model
func (m Mods) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Mods) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Mods) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, emit(RefreshMsg{})
	case "m":
		return m, emit(RetrieveMetadataMsg{})
	}

	if len(m.mods) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.mods) - 1
		}
		return m, nil

	case "down", "j":
		m.selected++
		if m.selected >= len(m.mods) {
			m.selected = 0
		}
		return m, nil

	case " ":
		mod := m.SelectedMod()
		if mod != nil && m.active != nil {
			return m, emit(ToggleModMsg{ModID: mod.SteamWorkshopID})
		}
		return m, nil

	case "home", "g":
		m.selected = 0
		return m, nil

	case "end", "G":
		m.selected = len(m.mods) - 1
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Mods) View() string {
	st := m.styles
	var b strings.Builder

	b.WriteString(st.Title.Render(m.title) + "\n")

	profileName := "No profile selected"
	if m.active != nil {
		profileName = m.active.ProfileName
	}
	b.WriteString(st.Info.Render("Profile: "+profileName) + "\n\n")

	if len(m.mods) == 0 {
		b.WriteString(st.Item.Render("No mods found.") + "\n\n")
		b.WriteString(st.Info.Render("Press r to refresh, or download mods from the Workshop tab.") + "\n")
		return b.String()
	}

	b.WriteString(st.Info.Render(st.Sprintf("%d mods:", len(m.mods))) + "\n\n")

	for i, mod := range m.mods {
		cursor := "  "
		style := st.Item
		enabled := core.IsModEnabled(mod.SteamWorkshopID, m.active)

		if i == m.selected {
			cursor = "▸ "
			style = st.Selected
		} else if m.active != nil && !enabled {
			style = st.Disabled
		}

		status := "   "
		if m.active != nil {
			status = "[ ]"
			if enabled {
				status = "[✓]"
			}
		}

		name := mod.Name
		if name == "" {
			name = mod.SteamWorkshopID.String()
		}
		line := fmt.Sprintf("%s%s %s", cursor, status, name)
		if mod.ModVersion != "" {
			line += " v" + mod.ModVersion
		}
		b.WriteString(style.Render(line) + "\n")

		if i == m.selected {
			b.WriteString(m.renderDetail(mod))
		}
	}

	help := "↑/↓: navigate  r: refresh  m: metadata"
	if m.active != nil {
		help += "  space: toggle in profile"
	}
	b.WriteString(st.Help.Render(help))

	return b.String()
}

func (m Mods) renderDetail(mod domain.Mod) string {
	st := m.styles
	var b strings.Builder
	line := func(s string) { b.WriteString(st.Detail.Render(s) + "\n") }

	if mod.Creator != "" {
		line("by " + mod.Creator)
	}
	line("ID: " + mod.SteamWorkshopID.String())
	if mod.CorePackage {
		line("Core package")
	}
	if !mod.HasMetadata() {
		line("No Workshop metadata yet")
	} else {
		if mod.Size > 0 {
			line(st.Sprintf("Size: %d bytes", mod.Size))
		}
		if mod.LastModified > 0 {
			line("Updated: " + domain.FormatDate(mod.LastModified))
		}
		if mod.Subscribers > 0 {
			line(st.Sprintf("Subscribers: %d  Likes: %d", mod.Subscribers, mod.Likes))
		}
		if len(mod.Tags) > 0 {
			line("Tags: " + strings.Join(mod.Tags, ", "))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// emit returns a command that yields msg
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
