package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"barobaro/internal/core"
	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/locale"
	"barobaro/internal/logging"
	"barobaro/internal/storage/config"
	"barobaro/internal/storage/db"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrCancelled is returned when the user cancels an operation.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.1.0"

	// Global flags not resolved through viper
	jsonOutput bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "barobaro",
	Short: "Barobaro - Barotrauma mod manager",
	Long: `barobaro manages Barotrauma mods through the barobaro backend.

It mirrors the backend's configuration, installed and enabled mods and
saved mod lists, and lets you change them from the command line or the
interactive terminal UI ('barobaro tui').

Flags can also be set through BAROBARO_* environment variables or a .env
file in the working directory, e.g. BAROBARO_BACKEND=http://127.0.0.1:7420.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

// viperFlags are persistent flags that fall back to BAROBARO_* variables
var viperFlags = []string{"config", "data", "backend", "log-level", "log-format"}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config directory (default: ~/.config/barobaro)")
	pf.String("data", "", "data directory (default: ~/.local/share/barobaro)")
	pf.String("backend", "", "backend URL (default: backend_url from config.yaml)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: auto, console, json")
	pf.BoolVar(&jsonOutput, "json", false, "output in JSON format")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	for _, name := range viperFlags {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding %s flag: %v", name, err))
		}
	}
}

// initConfig loads .env files and binds BAROBARO_* environment variables
func initConfig() {
	for _, f := range []string{".env", ".env.local"} {
		// missing files are fine
		_ = godotenv.Load(f)
	}

	viper.SetEnvPrefix("barobaro")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorize(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return code + s + ansiReset
}

func colorGreen(s string) string  { return colorize(ansiGreen, s) }
func colorRed(s string) string    { return colorize(ansiRed, s) }
func colorYellow(s string) string { return colorize(ansiYellow, s) }

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// dial builds the backend gateway for a session
var dial = func(baseURL string, log zerolog.Logger) gateway.Gateway {
	return gateway.NewHTTP(baseURL,
		gateway.WithLogger(log),
		gateway.WithHeader("User-Agent", "barobaro/"+version),
	)
}

// session holds everything a command needs to talk to the backend
type session struct {
	app       *core.App
	settings  *config.Settings
	printer   *locale.Printer
	db        *db.DB
	log       zerolog.Logger
	configDir string
	dataDir   string
}

// openSession loads client settings, opens the local preferences database
// and builds the client core. Logs go to logOut, or stderr when nil.
// Nothing is fetched from the backend yet; see connect.
func openSession(ctx context.Context, logOut io.Writer) (*session, error) {
	cfgDir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(cfgDir)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	applyOverrides(settings)

	dataDir, err := resolveDataDir(settings)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	log := logging.New(logging.Config{
		Level:   settings.LogLevel,
		Format:  settings.LogFormat,
		Output:  logOut,
		NoColor: !colorEnabled(),
	})

	database, err := db.New(filepath.Join(dataDir, db.FileName))
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	printer := locale.NewPrinter()
	app := core.New(core.Options{
		Gateway:   dial(settings.BackendURL, log),
		Prefs:     database,
		Localizer: printer,
		Logger:    log,
	})
	app.Bootstrap(ctx)

	return &session{
		app:       app,
		settings:  settings,
		printer:   printer,
		db:        database,
		log:       log,
		configDir: cfgDir,
		dataDir:   dataDir,
	}, nil
}

// Close releases the preferences database
func (s *session) Close() error {
	return s.db.Close()
}

// connect loads the backend configuration. Commands that cannot work
// without the backend return its error.
func (s *session) connect(ctx context.Context) error {
	if err := s.app.Initialize(ctx); err != nil {
		return fmt.Errorf("%w: connecting to backend at %s: %w", domain.ErrNotInitialized, s.settings.BackendURL, err)
	}
	return nil
}

// withSession opens a session, connects it and runs fn
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.connect(cmd.Context()); err != nil {
		return err
	}
	return fn(s)
}

// applyOverrides lets flags and environment win over config.yaml
func applyOverrides(s *config.Settings) {
	if v := viper.GetString("backend"); v != "" {
		s.BackendURL = v
	}
	if v := viper.GetString("log-level"); v != "" {
		s.LogLevel = v
	}
	if v := viper.GetString("log-format"); v != "" {
		s.LogFormat = v
	}
}

func resolveConfigDir() (string, error) {
	if dir := viper.GetString("config"); dir != "" {
		return config.ExpandHome(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".config", "barobaro"), nil
}

func resolveDataDir(s *config.Settings) (string, error) {
	if dir := viper.GetString("data"); dir != "" {
		return config.ExpandHome(dir), nil
	}
	if s.DataDir != "" {
		return s.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "barobaro"), nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
