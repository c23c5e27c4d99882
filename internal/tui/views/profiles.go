package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"barobaro/internal/domain"
)

// SelectProfileMsg makes a profile the active one
type SelectProfileMsg struct {
	Name string
}

// DeleteProfileMsg asks to delete a profile
type DeleteProfileMsg struct {
	Name string
}

// ExportProfileMsg asks to export a profile to a YAML file
type ExportProfileMsg struct {
	Name string
}

// CreateProfileMsg asks to create an empty profile
type CreateProfileMsg struct {
	Name string
}

// Profiles is the mod list management view
type Profiles struct {
	lists     []domain.ModList
	active    string
	selected  int
	creating  bool
	nameInput textinput.Model
	styles    *Styles
	width     int
	height    int
}

// NewProfiles creates a profiles view
func NewProfiles(lists []domain.ModList, active string, styles *Styles) Profiles {
	ti := textinput.New()
	ti.Placeholder = "Profile name..."
	ti.CharLimit = 64
	ti.Width = 30

	return Profiles{
		lists:     lists,
		active:    active,
		nameInput: ti,
		styles:    defaultStyles(styles),
		width:     80,
		height:    24,
	}
}

// SetLists replaces the listed profiles, keeping the selection in range
func (p Profiles) SetLists(lists []domain.ModList, active string) Profiles {
	p.lists = lists
	p.active = active
	if p.selected >= len(p.lists) {
		p.selected = max(len(p.lists)-1, 0)
	}
	return p
}

// Selected returns the currently selected index
func (p Profiles) Selected() int {
	return p.selected
}

// ProfileCount returns the number of profiles
func (p Profiles) ProfileCount() int {
	return len(p.lists)
}

// IsCreating reports whether the name prompt is open
func (p Profiles) IsCreating() bool {
	return p.creating
}

// SelectedProfile returns the currently selected profile
func (p Profiles) SelectedProfile() *domain.ModList {
	if len(p.lists) == 0 || p.selected >= len(p.lists) {
		return nil
	}
	return &p.lists[p.selected]
}

// Init implements tea.Model
func (p Profiles) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (p Profiles) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.creating {
			return p.handleCreateMode(msg)
		}
		return p.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil
	}

	return p, nil
}

func (p Profiles) handleCreateMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.creating = false
		p.nameInput.Reset()
		p.nameInput.Blur()
		return p, nil

	case tea.KeyEnter:
		name := strings.TrimSpace(p.nameInput.Value())
		if name == "" {
			return p, nil
		}
		p.creating = false
		p.nameInput.Reset()
		p.nameInput.Blur()
		return p, emit(CreateProfileMsg{Name: name})

	default:
		var cmd tea.Cmd
		p.nameInput, cmd = p.nameInput.Update(msg)
		return p, cmd
	}
}

func (p Profiles) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if len(p.lists) > 0 {
			p.selected--
			if p.selected < 0 {
				p.selected = len(p.lists) - 1
			}
		}
		return p, nil

	case "down", "j":
		if len(p.lists) > 0 {
			p.selected++
			if p.selected >= len(p.lists) {
				p.selected = 0
			}
		}
		return p, nil

	case "enter", " ":
		if list := p.SelectedProfile(); list != nil {
			return p, emit(SelectProfileMsg{Name: list.ProfileName})
		}
		return p, nil

	case "n":
		p.creating = true
		p.nameInput.Focus()
		return p, textinput.Blink

	case "d", "delete":
		// the active profile cannot be deleted from under the mod views
		if list := p.SelectedProfile(); list != nil && list.ProfileName != p.active {
			return p, emit(DeleteProfileMsg{Name: list.ProfileName})
		}
		return p, nil

	case "e":
		if list := p.SelectedProfile(); list != nil {
			return p, emit(ExportProfileMsg{Name: list.ProfileName})
		}
		return p, nil

	case "home", "g":
		p.selected = 0
		return p, nil

	case "end", "G":
		if len(p.lists) > 0 {
			p.selected = len(p.lists) - 1
		}
		return p, nil
	}

	return p, nil
}

// View implements tea.Model
func (p Profiles) View() string {
	st := p.styles
	var b strings.Builder

	b.WriteString(st.Title.Render("Profiles") + "\n\n")

	if p.creating {
		b.WriteString("New profile name: " + p.nameInput.View() + "\n\n")
		b.WriteString(st.Info.Render("enter: create  esc: cancel"))
		return b.String()
	}

	if len(p.lists) == 0 {
		b.WriteString(st.Item.Render("No profiles configured.") + "\n\n")
		b.WriteString(st.Info.Render("Press 'n' to create a new profile.") + "\n")
		return b.String()
	}

	for i, list := range p.lists {
		cursor := "  "
		style := st.Item
		if i == p.selected {
			cursor = "▸ "
			style = st.Selected
		}

		status := ""
		if list.ProfileName == p.active {
			status = st.Value.Render(" [active]")
		}
		b.WriteString(style.Render(cursor+list.ProfileName+status) + "\n")

		if i == p.selected {
			b.WriteString(st.Detail.Render("Base package: "+list.BasePackage) + "\n")
			b.WriteString(st.Detail.Render(st.Sprintf("Mods: %d", len(list.Mods))) + "\n\n")
		}
	}

	b.WriteString(st.Help.Render("enter: activate  n: new  d: delete  e: export"))
	return b.String()
}
