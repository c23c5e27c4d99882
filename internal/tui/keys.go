package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Keybinding modes
const (
	KeysVim      = "vim"
	KeysStandard = "standard"
)

// KeyMap defines the global keybindings. Views handle their own keys.
type KeyMap struct {
	mode string

	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Tabs    []key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// NewKeyMap creates a keymap for the given mode. Unknown modes are vim.
func NewKeyMap(mode string) *KeyMap {
	if mode != KeysStandard {
		mode = KeysVim
	}

	up := key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up"))
	down := key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down"))
	if mode == KeysVim {
		up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "up"))
		down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "down"))
	}

	tabs := make([]key.Binding, len(tabNames))
	for i, name := range tabNames {
		k := string(rune('1' + i))
		tabs[i] = key.NewBinding(key.WithKeys(k), key.WithHelp(k, name))
	}

	return &KeyMap{
		mode:    mode,
		Up:      up,
		Down:    down,
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
		Tabs:    tabs,
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp reports whether msg moves the cursor up
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Up)
}

// IsDown reports whether msg moves the cursor down
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Down)
}

// TabFor returns the view selected by a number key
func (k *KeyMap) TabFor(msg tea.KeyMsg) (ViewType, bool) {
	for i, b := range k.Tabs {
		if key.Matches(msg, b) {
			return ViewType(i), true
		}
	}
	return 0, false
}

// ShortHelp implements help.KeyMap
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		k.Tabs,
		{k.NextTab, k.PrevTab, k.Help, k.Quit},
	}
}
