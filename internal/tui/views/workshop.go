package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"barobaro/internal/domain"
)

// LookupMsg asks to fetch Workshop metadata for an item
type LookupMsg struct {
	ID domain.WorkshopID
}

// LookupResultMsg carries the answer to a LookupMsg
type LookupResultMsg struct {
	Items []domain.WorkshopItem
	Err   error
}

// DownloadModMsg asks to download a Workshop item
type DownloadModMsg struct {
	ID domain.WorkshopID
}

// Workshop looks up Workshop items by ID or page URL and downloads them
type Workshop struct {
	input    textinput.Model
	focused  bool
	results  []domain.WorkshopItem
	selected int
	loading  bool
	err      error
	styles   *Styles
	width    int
	height   int
}

// NewWorkshop creates a Workshop view with the input focused
func NewWorkshop(styles *Styles) Workshop {
	ti := textinput.New()
	ti.Placeholder = "Workshop ID or URL..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50

	return Workshop{
		input:   ti,
		focused: true,
		styles:  defaultStyles(styles),
		width:   80,
		height:  24,
	}
}

// Query returns the current input
func (w Workshop) Query() string {
	return w.input.Value()
}

// IsInputFocused reports whether the input has focus
func (w Workshop) IsInputFocused() bool {
	return w.focused
}

// ResultCount returns the number of looked-up items
func (w Workshop) ResultCount() int {
	return len(w.results)
}

// Err returns the last lookup or parse error
func (w Workshop) Err() error {
	return w.err
}

// SelectedItem returns the currently selected item
func (w Workshop) SelectedItem() *domain.WorkshopItem {
	if len(w.results) == 0 || w.selected >= len(w.results) {
		return nil
	}
	return &w.results[w.selected]
}

// Init implements tea.Model
func (w Workshop) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (w Workshop) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case LookupResultMsg:
		w.loading = false
		w.err = msg.Err
		w.results = msg.Items
		w.selected = 0
		if msg.Err == nil && len(msg.Items) > 0 {
			w.focused = false
			w.input.Blur()
		}
		return w, nil
	}

	if w.focused {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w Workshop) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if w.focused {
		switch msg.Type {
		case tea.KeyEsc:
			w.focused = false
			w.input.Blur()
			return w, nil

		case tea.KeyEnter:
			id, err := domain.ParseWorkshopRef(w.input.Value())
			if err != nil {
				w.err = err
				return w, nil
			}
			w.err = nil
			w.loading = true
			return w, emit(LookupMsg{ID: id})

		default:
			var cmd tea.Cmd
			w.input, cmd = w.input.Update(msg)
			return w, cmd
		}
	}

	switch msg.String() {
	case "/":
		w.focused = true
		w.input.Focus()
		return w, textinput.Blink

	case "up", "k":
		if len(w.results) > 0 {
			w.selected--
			if w.selected < 0 {
				w.selected = len(w.results) - 1
			}
		}
		return w, nil

	case "down", "j":
		if len(w.results) > 0 {
			w.selected++
			if w.selected >= len(w.results) {
				w.selected = 0
			}
		}
		return w, nil

	case "enter", "i":
		if item := w.SelectedItem(); item != nil {
			if item.ConsumerAppID != 0 && item.ConsumerAppID != domain.BarotraumaAppID {
				w.err = fmt.Errorf("item %d is not a Barotrauma mod", item.PublishedFileID)
				return w, nil
			}
			return w, emit(DownloadModMsg{ID: item.PublishedFileID})
		}
		return w, nil
	}

	return w, nil
}

// View implements tea.Model
func (w Workshop) View() string {
	st := w.styles
	var b strings.Builder

	b.WriteString(st.Title.Render("Steam Workshop") + "\n\n")

	label := "Item: "
	if w.focused {
		label = "Item (esc to leave): "
	}
	b.WriteString(label + w.input.View() + "\n\n")

	if w.loading {
		b.WriteString(st.Warning.Render("Looking up...") + "\n")
		return b.String()
	}
	if w.err != nil {
		b.WriteString(st.Error.Render(fmt.Sprintf("Error: %v", w.err)) + "\n\n")
	}

	if len(w.results) == 0 {
		b.WriteString(st.Item.Render("Enter a Workshop ID or page URL and press Enter.") + "\n")
	}
	for i, item := range w.results {
		cursor := "  "
		style := st.Item
		if i == w.selected {
			cursor = "▸ "
			style = st.Selected
		}
		title := item.Title
		if title == "" {
			title = item.PublishedFileID.String()
		}
		b.WriteString(style.Render(cursor+title) + "\n")

		if i == w.selected {
			if item.Creator != "" {
				b.WriteString(st.Detail.Render("by "+item.Creator) + "\n")
			}
			b.WriteString(st.Detail.Render(domain.WorkshopURL(item.PublishedFileID)) + "\n")
			if item.FileSize > 0 {
				b.WriteString(st.Detail.Render(st.Sprintf("Size: %d bytes  Subscriptions: %d", item.FileSize, item.Subscriptions)) + "\n")
			}
			if item.TimeUpdated > 0 {
				b.WriteString(st.Detail.Render("Updated: "+domain.FormatDate(item.TimeUpdated)) + "\n")
			}
			b.WriteString("\n")
		}
	}

	if w.focused {
		b.WriteString(st.Help.Render("enter: look up  esc: leave input"))
	} else {
		b.WriteString(st.Help.Render("/: new lookup  ↑/↓: navigate  enter: download"))
	}
	return b.String()
}
