package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show client and backend versions",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer s.Close()

	build, buildErr := s.app.BuildInfo(cmd.Context())

	if jsonOutput {
		out := map[string]any{
			"version": version,
			"go":      runtime.Version(),
		}
		if buildErr == nil {
			out["backend"] = build
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "barobaro %s (%s)\n", version, runtime.Version())
	if buildErr != nil {
		fmt.Fprintf(w, "backend: %s\n", colorYellow("unreachable at "+s.settings.BackendURL))
		return nil
	}
	fmt.Fprintf(w, "backend: %s (commit %s, built %s)\n", build.Version, build.Commit, build.Date)
	return nil
}
