package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"barobaro/internal/domain"
	"barobaro/internal/storage/db"
	"barobaro/internal/theme"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change the backend configuration",
	Long: `Show and change the configuration owned by the backend: the game and
SteamCMD locations, metadata batch size and interface preferences.

Client-only settings (backend URL, logging, keybindings) live in
~/.config/barobaro/config.yaml.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change configuration values",
	Long: `Change one or more configuration values. Only the given flags change;
everything else keeps its current value. The game and SteamCMD locations
can never be cleared.

Examples:
  barobaro config set --game-home ~/.steam/steam/steamapps/common/Barotrauma
  barobaro config set --theme light --language zh --opacity 0.4
  barobaro config set --batch-size 50`,
	Args: cobra.NoArgs,
	RunE: runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the configuration to the backend defaults",
	Long: `Reset every setting to the backend's defaults and save the result.
The game and SteamCMD locations are kept.`,
	Args: cobra.NoArgs,
	RunE: runConfigReset,
}

var configDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find Barotrauma in the local Steam libraries",
	Long: `Search the Steam libraries for Barotrauma and save its location as the
game home.

Examples:
  barobaro config detect
  barobaro config detect --steam-root /mnt/games/SteamLibrary`,
	Args: cobra.NoArgs,
	RunE: runConfigDetect,
}

var configThemeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show the computed theme",
	Long: `Show the theme mode, overlay settings and colour variables computed
from the configuration, along with the backend's background image.`,
	Args: cobra.NoArgs,
	RunE: runConfigTheme,
}

var configPrefsCmd = &cobra.Command{
	Use:   "prefs [key...]",
	Short: "Show or clear locally stored preferences",
	Long: `Show the theme and language kept in the local database so the
interface starts in the right mode before the backend answers.

With --clear the given keys are removed, or every key when none is given.
They are stored again the next time the backend configuration loads.`,
	RunE: runConfigPrefs,
}

var (
	setGameHome        string
	setSteamCmdHome    string
	setBatchSize       int
	setBackendLogLevel string
	setParallel        uint32
	setSteamUser       string
	setTheme           string
	setLanguage        string
	setAccent          string
	setOpacity         float64
	setBlur            uint32

	steamRoots []string
	clearPrefs bool
)

func init() {
	f := configSetCmd.Flags()
	f.StringVar(&setGameHome, "game-home", "", "Barotrauma installation directory")
	f.StringVar(&setSteamCmdHome, "steamcmd-home", "", "SteamCMD installation directory")
	f.IntVar(&setBatchSize, "batch-size", 0, "Workshop metadata batch size (> 0)")
	f.StringVar(&setBackendLogLevel, "backend-log-level", "", "backend log level: trace, debug, info, warn, error")
	f.Uint32Var(&setParallel, "parallel", 0, "parallel SteamCMD downloads")
	f.StringVar(&setSteamUser, "steam-user", "", "SteamCMD login user")
	f.StringVar(&setTheme, "theme", "", "theme: dark or light")
	f.StringVar(&setLanguage, "language", "", "language: en or zh")
	f.StringVar(&setAccent, "accent", "", "accent colour as #rrggbb")
	f.Float64Var(&setOpacity, "opacity", 0, "background opacity between 0 and 1")
	f.Uint32Var(&setBlur, "blur", 0, "background blur in pixels")

	configDetectCmd.Flags().StringSliceVar(&steamRoots, "steam-root", nil, "Steam root to search (repeatable; default: standard locations)")

	configPrefsCmd.Flags().BoolVar(&clearPrefs, "clear", false, "remove the given keys, or all of them")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configDetectCmd)
	configCmd.AddCommand(configThemeCmd)
	configCmd.AddCommand(configPrefsCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		cfg := s.app.Config.Snapshot()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		printConfig(cmd, s, cfg)
		return nil
	})
}

func printConfig(cmd *cobra.Command, s *session, cfg domain.Config) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	path := func(name, v string) {
		if v == "" {
			v = colorYellow("not set")
		}
		fmt.Fprintf(w, "%s:\t%s\n", name, v)
	}

	path("Game home", cfg.GameHome)
	path("SteamCMD home", cfg.SteamCmdHome)
	fmt.Fprintf(w, "Backend log level:\t%s\n", cfg.LogLevel)
	fmt.Fprintf(w, "Metadata batch size:\t%d\n", cfg.BatchSize())

	if sc := cfg.SteamCmdConfig; sc != nil {
		user := sc.Username
		if user == "" {
			user = "anonymous"
		}
		fmt.Fprintf(w, "SteamCMD:\t%d parallel, user %s\n", sc.Parallel, user)
	}
	if ui := cfg.UIConfig; ui != nil {
		fmt.Fprintf(w, "Theme:\t%s\n", ui.Theme)
		fmt.Fprintf(w, "Language:\t%s\n", ui.Language)
		fmt.Fprintf(w, "Accent colour:\t%s\n", ui.AccentColor)
		fmt.Fprintf(w, "Background:\t%s opacity, %dpx blur\n", s.printer.Sprintf("%.0f%%", ui.BackgroundOpacity*100), ui.BackgroundBlur)
	} else {
		fmt.Fprintf(w, "Interface:\t%s\n", colorYellow("defaults"))
	}
	w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	patch, uiChanged, err := configPatchFromFlags(cmd)
	if err != nil {
		return err
	}

	return withSession(cmd, func(s *session) error {
		ctx := cmd.Context()
		current := s.app.Config.Snapshot()
		if uiChanged {
			ui := domain.DefaultConfig().UIConfig
			if current.UIConfig != nil {
				ui = current.UIConfig
			}
			applyUIFlags(cmd, ui)
			patch.UIConfig = ui
		}
		if cmd.Flags().Changed("parallel") || cmd.Flags().Changed("steam-user") {
			sc := domain.DefaultConfig().SteamCmdConfig
			if current.SteamCmdConfig != nil {
				sc = current.SteamCmdConfig
			}
			if cmd.Flags().Changed("parallel") {
				sc.Parallel = setParallel
			}
			if cmd.Flags().Changed("steam-user") {
				sc.Username = setSteamUser
			}
			patch.SteamCmdConfig = sc
		}

		cfg, err := s.app.Config.Update(ctx, patch)
		if err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
		if uiChanged {
			s.app.Theme.SetTheme(ctx, cfg.UIConfig.Theme)
			s.app.ResolveLocale(ctx)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		fmt.Fprintln(cmd.OutOrStdout(), colorGreen("✓")+" Configuration saved")
		return nil
	})
}

// configPatchFromFlags builds the patch for the non-nested flags and reports
// whether any interface flag was given
func configPatchFromFlags(cmd *cobra.Command) (domain.ConfigPatch, bool, error) {
	var patch domain.ConfigPatch
	flags := cmd.Flags()

	if !flags.Changed("game-home") && !flags.Changed("steamcmd-home") && !flags.Changed("batch-size") &&
		!flags.Changed("backend-log-level") && !flags.Changed("parallel") && !flags.Changed("steam-user") &&
		!uiFlagChanged(cmd) {
		return patch, false, fmt.Errorf("nothing to change; see 'barobaro config set --help'")
	}

	if flags.Changed("game-home") {
		if setGameHome == "" {
			return patch, false, fmt.Errorf("%w: --game-home cannot be empty", domain.ErrValidation)
		}
		patch.GameHome = &setGameHome
	}
	if flags.Changed("steamcmd-home") {
		if setSteamCmdHome == "" {
			return patch, false, fmt.Errorf("%w: --steamcmd-home cannot be empty", domain.ErrValidation)
		}
		patch.SteamCmdHome = &setSteamCmdHome
	}
	if flags.Changed("batch-size") {
		patch.MetadataRetrieveBatchSize = &setBatchSize
	}
	if flags.Changed("backend-log-level") {
		lvl, err := domain.ParseLogLevel(setBackendLogLevel)
		if err != nil {
			return patch, false, err
		}
		patch.LogLevel = &lvl
	}
	if flags.Changed("theme") {
		switch setTheme {
		case "dark", "light":
		default:
			return patch, false, fmt.Errorf("%w: --theme must be dark or light, got %q", domain.ErrValidation, setTheme)
		}
	}
	if flags.Changed("accent") {
		accent, err := parseAccent(setAccent)
		if err != nil {
			return patch, false, fmt.Errorf("%w: --accent must look like #rrggbb, got %q", domain.ErrValidation, setAccent)
		}
		setAccent = accent
	}

	return patch, uiFlagChanged(cmd), nil
}

var uiFlags = []string{"theme", "language", "accent", "opacity", "blur"}

func uiFlagChanged(cmd *cobra.Command) bool {
	return slices.ContainsFunc(uiFlags, cmd.Flags().Changed)
}

func applyUIFlags(cmd *cobra.Command, ui *domain.UIConfig) {
	flags := cmd.Flags()
	if flags.Changed("theme") {
		ui.Theme = domain.ParseTheme(setTheme)
	}
	if flags.Changed("language") {
		ui.Language = domain.ParseLanguage(setLanguage)
	}
	if flags.Changed("accent") {
		ui.AccentColor = setAccent
	}
	if flags.Changed("opacity") {
		ui.BackgroundOpacity = setOpacity
	}
	if flags.Changed("blur") {
		ui.BackgroundBlur = setBlur
	}
}

// parseAccent returns s as a lower-case #rrggbb colour
func parseAccent(s string) (string, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", err
	}
	// Hex ignores trailing input and accepts the short #rgb form
	hex := c.Hex()
	if hex != strings.ToLower(s) {
		return "", fmt.Errorf("%q is not a #rrggbb colour", s)
	}
	return hex, nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		ctx := cmd.Context()
		prev := s.app.Config.Snapshot()

		if err := s.app.Config.Reset(ctx); err != nil {
			return err
		}
		cfg, err := s.app.Config.Update(ctx, domain.ConfigPatch{
			GameHome:     &prev.GameHome,
			SteamCmdHome: &prev.SteamCmdHome,
		})
		if err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
		if cfg.UIConfig != nil {
			s.app.Theme.SetTheme(ctx, cfg.UIConfig.Theme)
		}
		s.app.ResolveLocale(ctx)

		fmt.Fprintln(cmd.OutOrStdout(), colorGreen("✓")+" Configuration reset to defaults")
		return nil
	})
}

func runConfigDetect(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		inst, err := s.app.DetectGameHome(cmd.Context(), steamRoots...)
		if err != nil {
			return fmt.Errorf("detecting Barotrauma: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), inst)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Game home set to %s\n", colorGreen("✓"), inst.InstallPath)
		return nil
	})
}

func runConfigTheme(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		bgErr := s.app.Theme.SetBackgroundImage(cmd.Context())
		st := s.app.Theme.State()

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), struct {
				Mode       string          `json:"mode"`
				Accent     string          `json:"accent"`
				Opacity    float64         `json:"opacity"`
				Blur       uint32          `json:"blur"`
				Vars       theme.Variables `json:"vars"`
				Background string          `json:"background,omitempty"`
			}{st.Mode.String(), st.Accent, st.Opacity, st.Blur, st.Vars, st.Background.Format})
		}

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Mode:\t%s\n", st.Mode)
		fmt.Fprintf(w, "Accent:\t%s\n", st.Accent)
		fmt.Fprintf(w, "Overlay:\t%s opacity, %dpx blur\n", s.printer.Sprintf("%.0f%%", st.Opacity*100), st.Blur)
		switch {
		case bgErr != nil:
			fmt.Fprintf(w, "Background:\t%s\n", colorRed(bgErr.Error()))
		case st.Background.Empty():
			fmt.Fprintf(w, "Background:\tnone\n")
		default:
			fmt.Fprintf(w, "Background:\t%s %dx%d\n", st.Background.Format, st.Background.Width, st.Background.Height)
		}
		w.Flush()

		fmt.Fprintln(out)
		names := make([]string, 0, len(st.Vars))
		for name := range st.Vars {
			names = append(names, name)
		}
		slices.Sort(names)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VARIABLE\tVALUE")
		fmt.Fprintln(w, "--------\t-----")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, st.Vars[name])
		}
		return w.Flush()
	})
}

func runConfigPrefs(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	prefs, err := s.db.ListPreferences(ctx)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		prefs = slices.DeleteFunc(prefs, func(p db.Preference) bool {
			return !slices.Contains(args, p.Key)
		})
	}

	out := cmd.OutOrStdout()
	if clearPrefs {
		for _, p := range prefs {
			if err := s.db.DeletePreference(ctx, p.Key); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%s Cleared %d preference(s)\n", colorGreen("✓"), len(prefs))
		return nil
	}

	version, err := s.db.SchemaVersion()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, struct {
			Schema      int             `json:"schema"`
			Preferences []db.Preference `json:"preferences"`
		}{version, prefs})
	}

	fmt.Fprintf(out, "Database: %s (schema v%d)\n", filepath.Join(s.dataDir, db.FileName), version)
	if len(prefs) == 0 {
		fmt.Fprintln(out, "No preferences stored.")
		return nil
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tUPDATED")
	fmt.Fprintln(w, "---\t-----\t-------")
	for _, p := range prefs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Key, p.Value, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
