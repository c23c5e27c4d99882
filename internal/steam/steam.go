// Package steam locates a local Barotrauma installation and its downloaded
// Workshop items by reading Steam's library metadata.
package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"barobaro/internal/domain"
)

// ErrNotInstalled is returned when no Steam library contains the game
var ErrNotInstalled = errors.New("barotrauma not found in any steam library")

// Installation is a Barotrauma install found on disk
type Installation struct {
	AppID       string
	Name        string
	LibraryPath string // Steam library holding the game
	InstallPath string // steamapps/common/<installdir>
	WorkshopDir string // steamapps/workshop/content/<appid>, may not exist
}

// FindSteamRoots returns candidate Steam installation roots in search order.
// $STEAM_ROOT comes first when set.
func FindSteamRoots() []string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
	}
	if p := os.Getenv("STEAM_ROOT"); p != "" {
		candidates = append([]string{p}, candidates...)
	}

	var out []string
	seen := make(map[string]bool)
	for _, p := range candidates {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// LibraryPaths returns every library listed in a Steam root's libraryfolders.vdf.
// A root without that file is its own single library.
func LibraryPaths(steamRoot string) ([]string, error) {
	f, err := os.Open(filepath.Join(steamRoot, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{steamRoot}, nil
		}
		return nil, fmt.Errorf("reading libraryfolders: %w", err)
	}
	defer f.Close()

	root, err := ParseVDF(f)
	if err != nil {
		return nil, fmt.Errorf("parsing libraryfolders: %w", err)
	}
	paths := libraryPaths(root)
	if len(paths) == 0 {
		return []string{steamRoot}, nil
	}
	return paths, nil
}

// FindBarotrauma searches the given Steam roots for Barotrauma. With no
// roots it searches FindSteamRoots().
func FindBarotrauma(roots ...string) (Installation, error) {
	if len(roots) == 0 {
		roots = FindSteamRoots()
	}
	appID := strconv.Itoa(domain.BarotraumaAppID)

	for _, root := range roots {
		libraries, err := LibraryPaths(root)
		if err != nil {
			continue
		}
		for _, lib := range libraries {
			inst, ok := findInLibrary(lib, appID)
			if ok {
				return inst, nil
			}
		}
	}
	return Installation{}, ErrNotInstalled
}

func findInLibrary(lib, appID string) (Installation, bool) {
	steamapps := filepath.Join(lib, "steamapps")
	f, err := os.Open(filepath.Join(steamapps, "appmanifest_"+appID+".acf"))
	if err != nil {
		return Installation{}, false
	}
	defer f.Close()

	manifest, err := ParseAppManifest(f)
	if err != nil || manifest.AppID != appID || manifest.InstallDir == "" {
		return Installation{}, false
	}
	installPath := filepath.Join(steamapps, "common", manifest.InstallDir)
	if info, err := os.Stat(installPath); err != nil || !info.IsDir() {
		return Installation{}, false
	}
	return Installation{
		AppID:       manifest.AppID,
		Name:        manifest.Name,
		LibraryPath: lib,
		InstallPath: installPath,
		WorkshopDir: filepath.Join(steamapps, "workshop", "content", appID),
	}, true
}
