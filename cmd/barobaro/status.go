package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current status",
	Long: `Show the backend connection, the game location and mod counts.

When the backend is unreachable the locally stored theme and language
are shown instead.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	initErr := s.app.Initialize(ctx)
	var refreshErr error
	if initErr == nil {
		refreshErr = s.app.RefreshAll(ctx)
	}

	if jsonOutput {
		out := map[string]any{
			"backend":   s.settings.BackendURL,
			"connected": initErr == nil,
			"language":  s.app.Language().Code(),
			"theme":     s.app.Theme.Mode().String(),
		}
		if initErr == nil {
			cfg := s.app.Config.Snapshot()
			out["gameHome"] = cfg.GameHome
			out["installed"] = s.app.Installed.Len()
			out["enabled"] = s.app.Enabled.Len()
			out["profiles"] = len(s.app.Profiles.List())
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Backend:\t%s\n", s.settings.BackendURL)
	if initErr != nil {
		fmt.Fprintf(w, "Connection:\t%s\n", colorRed(initErr.Error()))
	} else {
		fmt.Fprintf(w, "Connection:\t%s\n", colorGreen("ok"))
	}
	fmt.Fprintf(w, "Language:\t%s\n", s.app.Language())
	fmt.Fprintf(w, "Theme:\t%s\n", s.app.Theme.Mode())

	if initErr == nil {
		cfg := s.app.Config.Snapshot()
		home := cfg.GameHome
		if home == "" {
			home = colorYellow("not set (try 'barobaro config detect')")
		}
		fmt.Fprintf(w, "Game home:\t%s\n", home)
		fmt.Fprintf(w, "Installed mods:\t%d\n", s.app.Installed.Len())
		fmt.Fprintf(w, "Enabled mods:\t%d\n", s.app.Enabled.Len())
		fmt.Fprintf(w, "Mod lists:\t%d\n", len(s.app.Profiles.List()))
		if refreshErr != nil {
			fmt.Fprintf(w, "Warning:\t%s\n", colorYellow(refreshErr.Error()))
		}
	}
	return w.Flush()
}
