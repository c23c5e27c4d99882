package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"barobaro/internal/domain"
)

// WorkshopItem is a Workshop item Steam has downloaded for the game
type WorkshopItem struct {
	ID          domain.WorkshopID
	Size        uint64
	TimeUpdated int64
	Path        string // content directory, empty if it is missing on disk
}

// WorkshopItems lists the items recorded in the library's
// appworkshop_<appid>.acf, ordered by ID. A library without that file has
// no items.
func (inst Installation) WorkshopItems() ([]WorkshopItem, error) {
	manifest := filepath.Join(inst.LibraryPath, "steamapps", "workshop", "appworkshop_"+inst.AppID+".acf")
	f, err := os.Open(manifest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading workshop manifest: %w", err)
	}
	defer f.Close()

	root, err := ParseVDF(f)
	if err != nil {
		return nil, fmt.Errorf("parsing workshop manifest: %w", err)
	}
	state, ok := root.Map("AppWorkshop")
	if !ok {
		return nil, fmt.Errorf("workshop manifest: missing AppWorkshop")
	}
	installed, _ := state.Map("WorkshopItemsInstalled")

	items := make([]WorkshopItem, 0, len(installed))
	for key := range installed {
		entry, ok := installed.Map(key)
		if !ok {
			continue
		}
		id, err := domain.ParseWorkshopID(key)
		if err != nil || id == 0 {
			continue
		}
		item := WorkshopItem{
			ID:          id,
			Size:        entry.Uint("size"),
			TimeUpdated: int64(entry.Uint("timeupdated")),
		}
		dir := filepath.Join(inst.WorkshopDir, key)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			item.Path = dir
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
