package main

import (
	"fmt"
	"os"
	"path/filepath"

	"barobaro/internal/storage/config"
	"barobaro/internal/tui"

	"github.com/spf13/cobra"
)

// logFileName receives logs while the terminal UI owns the screen
const logFileName = "barobaro.log"

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Long: `Start the interactive terminal UI. It works without a reachable
backend, using the last stored theme and language until the backend
answers.

Logs are written to barobaro.log in the data directory.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringSliceVar(&steamRoots, "steam-root", nil, "Steam root to search when detecting the game (repeatable)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	dir, err := resolveDataDirForLogs()
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	s, err := openSession(cmd.Context(), logFile)
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.Run(cmd.Context(), tui.Options{
		Core:        s.app,
		Settings:    *s.settings,
		SettingsDir: s.configDir,
		ExportDir:   filepath.Join(s.dataDir, "profiles"),
		Printer:     s.printer,
		SteamRoots:  steamRoots,
	})
}

// resolveDataDirForLogs finds and creates the data directory before a
// session exists
func resolveDataDirForLogs() (string, error) {
	cfgDir, err := resolveConfigDir()
	if err != nil {
		return "", err
	}
	settings, err := config.Load(cfgDir)
	if err != nil {
		return "", fmt.Errorf("loading settings: %w", err)
	}
	dir, err := resolveDataDir(settings)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return dir, nil
}
