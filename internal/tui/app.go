package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"barobaro/internal/core"
	"barobaro/internal/domain"
	"barobaro/internal/locale"
	"barobaro/internal/storage/config"
	"barobaro/internal/tui/views"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewStatus ViewType = iota
	ViewInstalled
	ViewEnabled
	ViewProfiles
	ViewWorkshop
	ViewSettings
)

var tabNames = []string{"Status", "Installed", "Enabled", "Profiles", "Workshop", "Settings"}

// NavigateMsg is sent to change views
type NavigateMsg struct {
	View ViewType
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

type loadedMsg struct {
	initErr    error
	refreshErr error
	metaErr    error
	build      *domain.BuildInfo
}

// noticeMsg reports the outcome of a background action
type noticeMsg struct {
	text string
	err  error
}

type modeMsg domain.Theme

// Options configures the TUI
type Options struct {
	Core        *core.App
	Settings    config.Settings
	SettingsDir string // where keybinding changes are saved; empty disables saving
	ExportDir   string // where profiles are exported
	Printer     *locale.Printer
	SteamRoots  []string
}

// App is the main TUI application model
type App struct {
	ctx    context.Context
	core   *core.App
	opts   Options
	keys   *KeyMap
	help   help.Model
	styles *views.Styles

	currentView ViewType
	width       int
	height      int
	notice      string
	err         error
	active      string
	loaded      bool
	build       *domain.BuildInfo

	modeSub string
	modes   <-chan domain.Theme

	status    views.Status
	installed views.Mods
	enabled   views.Mods
	profiles  views.Profiles
	workshop  views.Workshop
	settings  views.Settings
}

// NewApp creates a new TUI application. Call Close when done with it.
func NewApp(ctx context.Context, opts Options) App {
	styles := views.NewStyles(opts.Core.Theme.Palette(), opts.Printer)
	modeSub, modes := opts.Core.Theme.SubscribeMode()

	a := App{
		ctx:       ctx,
		core:      opts.Core,
		opts:      opts,
		keys:      NewKeyMap(opts.Settings.Keybindings),
		help:      help.New(),
		styles:    styles,
		width:     80,
		height:    24,
		modeSub:   modeSub,
		modes:     modes,
		installed: views.NewMods("Installed Mods", nil, nil, styles),
		enabled:   views.NewMods("Enabled Mods", nil, nil, styles),
		profiles:  views.NewProfiles(nil, "", styles),
		workshop:  views.NewWorkshop(styles),
	}
	a.settings = views.NewSettings(a.settingsData(), styles)
	a.status = views.NewStatus(a.statusData(), styles)
	return a
}

// Close releases the theme subscription
func (a App) Close() {
	a.core.Theme.UnsubscribeMode(a.modeSub)
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// ActiveProfile returns the name of the profile the mod views mark against
func (a App) ActiveProfile() string {
	return a.active
}

// Notice returns the last action notice
func (a App) Notice() string {
	return a.notice
}

// Err returns the last error shown
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(a.load(), a.listenMode(), a.workshop.Init())
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case NavigateMsg:
		a.currentView = msg.View
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil

	case loadedMsg:
		return a.handleLoaded(msg), nil

	case noticeMsg:
		a.notice, a.err = msg.text, msg.err
		a.syncViews()
		return a, nil

	case modeMsg:
		a.styles.Restyle(a.core.Theme.Palette())
		a.syncViews()
		return a, a.listenMode()

	case views.RefreshMsg:
		a.notice = "Refreshing..."
		return a, a.load()

	case views.RetrieveMetadataMsg:
		return a, a.retrieveMetadata()

	case views.ToggleModMsg:
		return a, a.toggleMod(msg.ModID)

	case views.SelectProfileMsg:
		a.active = msg.Name
		a.notice = "Active profile: " + msg.Name
		a.syncViews()
		return a, nil

	case views.CreateProfileMsg:
		return a, a.createProfile(msg.Name)

	case views.DeleteProfileMsg:
		return a, a.deleteProfile(msg.Name)

	case views.ExportProfileMsg:
		return a, a.exportProfile(msg.Name)

	case views.LookupMsg:
		return a, a.lookup(msg.ID)

	case views.LookupResultMsg:
		m, cmd := a.workshop.Update(msg)
		a.workshop = m.(views.Workshop)
		return a, cmd

	case views.DownloadModMsg:
		a.notice = fmt.Sprintf("Downloading %d...", msg.ID)
		return a, a.download(msg.ID)

	case views.DetectGameHomeMsg:
		return a, a.detectGameHome()

	case views.SettingsChangedMsg:
		return a.applySettings(msg.Settings)
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	// text inputs take every other key
	if a.capturing() {
		return a.updateCurrentView(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, a.keys.NextTab):
		a.currentView = (a.currentView + 1) % ViewType(len(tabNames))
		return a, nil

	case key.Matches(msg, a.keys.PrevTab):
		a.currentView = (a.currentView + ViewType(len(tabNames)) - 1) % ViewType(len(tabNames))
		return a, nil
	}

	if v, ok := a.keys.TabFor(msg); ok {
		a.currentView = v
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) capturing() bool {
	switch a.currentView {
	case ViewWorkshop:
		return a.workshop.IsInputFocused()
	case ViewProfiles:
		return a.profiles.IsCreating()
	}
	return false
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		m   tea.Model
		cmd tea.Cmd
	)

	switch a.currentView {
	case ViewStatus:
		m, cmd = a.status.Update(msg)
		a.status = m.(views.Status)
	case ViewInstalled:
		m, cmd = a.installed.Update(msg)
		a.installed = m.(views.Mods)
	case ViewEnabled:
		m, cmd = a.enabled.Update(msg)
		a.enabled = m.(views.Mods)
	case ViewProfiles:
		m, cmd = a.profiles.Update(msg)
		a.profiles = m.(views.Profiles)
	case ViewWorkshop:
		m, cmd = a.workshop.Update(msg)
		a.workshop = m.(views.Workshop)
	case ViewSettings:
		m, cmd = a.settings.Update(msg)
		a.settings = m.(views.Settings)
	}

	return a, cmd
}

func (a App) handleLoaded(msg loadedMsg) App {
	a.loaded = true
	a.build = msg.build
	a.notice = ""
	a.err = msg.initErr
	if a.err == nil {
		a.err = msg.refreshErr
	}
	if a.err == nil && msg.metaErr != nil {
		a.err = fmt.Errorf("metadata: %w", msg.metaErr)
	}

	if a.active == "" {
		if lists := a.core.Profiles.List(); len(lists) > 0 {
			a.active = lists[0].ProfileName
		}
	}
	a.settings = views.NewSettings(a.settingsData(), a.styles)
	a.syncViews()
	return a
}

// syncViews copies store snapshots into the views
func (a *App) syncViews() {
	var active *domain.ModList
	if a.active != "" {
		if list, ok := a.core.Profiles.Get(a.active); ok {
			active = &list
		} else {
			a.active = ""
		}
	}

	a.installed = a.installed.SetMods(a.core.Installed.Mods(), active)
	a.enabled = a.enabled.SetMods(a.core.Enabled.Mods(), active)
	a.profiles = a.profiles.SetLists(a.core.Profiles.List(), a.active)
	a.status = a.status.SetData(a.statusData())
}

func (a App) statusData() views.StatusData {
	return views.StatusData{
		Config:    a.core.Config.Snapshot(),
		Loaded:    a.core.Config.Loaded(),
		InitErr:   a.core.InitError(),
		Build:     a.build,
		Installed: a.core.Installed.Len(),
		Enabled:   a.core.Enabled.Len(),
		Profiles:  len(a.core.Profiles.List()),
		Language:  a.core.Language(),
		Theme:     a.core.Theme.Mode(),
	}
}

func (a App) settingsData() views.SettingsData {
	data := views.SettingsData{
		Theme:       a.core.Theme.Mode(),
		Language:    a.core.Language(),
		Keybindings: a.keys.Mode(),
	}
	if ui := a.core.Config.Snapshot().UIConfig; ui != nil {
		data.Opacity = ui.BackgroundOpacity
	}
	return data
}

// View implements tea.Model
func (a App) View() string {
	st := a.styles
	var b strings.Builder

	b.WriteString(st.Title.Render("barobaro - Barotrauma Mod Manager") + "\n")

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("[%d]%s", i+1, name)
		if ViewType(i) == a.currentView {
			tabs[i] = st.ActiveTab.Render(label)
		} else {
			tabs[i] = st.Tab.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n\n")

	b.WriteString(a.renderCurrentView() + "\n\n")

	if a.err != nil {
		b.WriteString(st.Error.Render(fmt.Sprintf("Error: %v", a.err)) + "\n")
	} else if a.notice != "" {
		b.WriteString(st.Info.Render(a.notice) + "\n")
	}

	b.WriteString(st.Help.Render(a.help.View(a.keys)))
	return b.String()
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewStatus:
		return a.status.View()
	case ViewInstalled:
		return a.installed.View()
	case ViewEnabled:
		return a.enabled.View()
	case ViewProfiles:
		return a.profiles.View()
	case ViewWorkshop:
		return a.workshop.View()
	case ViewSettings:
		return a.settings.View()
	default:
		return "Unknown view"
	}
}

func (a App) listenMode() tea.Cmd {
	ch := a.modes
	return func() tea.Msg {
		mode, ok := <-ch
		if !ok {
			return nil
		}
		return modeMsg(mode)
	}
}

// load initializes the client, refreshes every collection and retrieves
// metadata once both mod collections are current
func (a App) load() tea.Cmd {
	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		var msg loadedMsg
		msg.initErr = c.Initialize(ctx)
		msg.refreshErr = c.RefreshAll(ctx)
		if msg.refreshErr == nil {
			_, msg.metaErr = c.RetrieveMetadata(ctx)
		}
		if info, err := c.BuildInfo(ctx); err == nil {
			msg.build = &info
		}
		return msg
	}
}

func (a App) retrieveMetadata() tea.Cmd {
	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		res, err := c.RetrieveMetadata(ctx)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: fmt.Sprintf("Metadata updated: %d installed, %d enabled", res.Installed, res.Enabled)}
	}
}

func (a App) toggleMod(id domain.WorkshopID) tea.Cmd {
	list, ok := a.core.Profiles.Get(a.active)
	if !ok {
		return nil
	}
	member := id.String()
	if i := slices.Index(list.Mods, member); i >= 0 {
		list.Mods = slices.Delete(list.Mods, i, i+1)
	} else {
		list.Mods = append(list.Mods, member)
	}

	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		if err := c.Profiles.Update(ctx, list); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: fmt.Sprintf("Saved profile %s", list.ProfileName)}
	}
}

func (a App) createProfile(name string) tea.Cmd {
	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		if err := c.Profiles.Create(ctx, name, domain.DefaultBasePackage, nil); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Created profile " + name}
	}
}

func (a App) deleteProfile(name string) tea.Cmd {
	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		if err := c.Profiles.Delete(ctx, name); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Deleted profile " + name}
	}
}

func (a App) exportProfile(name string) tea.Cmd {
	path := filepath.Join(a.opts.ExportDir, name+".yaml")
	c := a.core
	return func() tea.Msg {
		if err := c.ExportProfile(name, path); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Exported to " + path}
	}
}

func (a App) lookup(id domain.WorkshopID) tea.Cmd {
	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		items, err := c.WorkshopItems(ctx, []domain.WorkshopID{id})
		return views.LookupResultMsg{Items: items, Err: err}
	}
}

func (a App) download(id domain.WorkshopID) tea.Cmd {
	ctx, c := a.ctx, a.core
	return func() tea.Msg {
		if err := c.DownloadMods(ctx, []domain.WorkshopID{id}); err != nil {
			return noticeMsg{err: err}
		}
		if _, err := c.RetrieveMetadata(ctx); err != nil {
			return noticeMsg{text: fmt.Sprintf("Downloaded %d", id), err: err}
		}
		return noticeMsg{text: fmt.Sprintf("Downloaded %d", id)}
	}
}

func (a App) detectGameHome() tea.Cmd {
	ctx, c, roots := a.ctx, a.core, a.opts.SteamRoots
	return func() tea.Msg {
		inst, err := c.DetectGameHome(ctx, roots...)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Game home set to " + inst.InstallPath}
	}
}

func (a App) applySettings(s views.SettingsData) (tea.Model, tea.Cmd) {
	if s.Keybindings != a.keys.Mode() {
		a.keys = NewKeyMap(s.Keybindings)
		a.opts.Settings.Keybindings = a.keys.Mode()
		if a.opts.SettingsDir != "" {
			if err := a.opts.Settings.Save(a.opts.SettingsDir); err != nil {
				a.err = err
			}
		}
	}

	ctx, c := a.ctx, a.core
	if !c.Config.Loaded() {
		// nothing to persist to; the mode still changes for this session
		c.Theme.SetTheme(ctx, s.Theme)
		a.notice = "Backend unavailable, settings apply to this session only"
		return a, nil
	}

	ui := domain.DefaultConfig().UIConfig
	if cur := c.Config.Snapshot().UIConfig; cur != nil {
		ui = cur
	}
	updated := *ui
	updated.Theme = s.Theme
	updated.Language = s.Language
	updated.BackgroundOpacity = s.Opacity

	return a, func() tea.Msg {
		cfg, err := c.Config.UpdateUIConfig(ctx, updated)
		if err != nil {
			return noticeMsg{err: err}
		}
		// the theme follows the published config through WatchTheme
		lang := c.ResolveLocale(ctx)
		return noticeMsg{text: fmt.Sprintf("Settings saved (%s, %s)", cfg.UIConfig.Theme, lang)}
	}
}

// Run starts the TUI application and blocks until it exits
func Run(ctx context.Context, opts Options) error {
	app := NewApp(ctx, opts)
	defer app.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go opts.Core.WatchTheme(watchCtx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
