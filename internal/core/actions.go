package core

import (
	"context"
	"fmt"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/steam"
	"barobaro/internal/storage/config"
)

// DownloadMods asks the backend to download the given Workshop items and
// then refreshes the installed collection
func (a *App) DownloadMods(ctx context.Context, ids []domain.WorkshopID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := gateway.DownloadMods(ctx, a.gw, ids); err != nil {
		a.log.Error().Err(err).Int("count", len(ids)).Msg("downloading mods")
		return fmt.Errorf("downloading mods: %w", err)
	}
	a.log.Info().Int("count", len(ids)).Msg("mods downloaded")
	return a.Installed.Refresh(ctx)
}

// InstallMods asks the backend to install the given Workshop items and then
// refreshes the installed collection. Per-mod failures are reported in the
// outcomes, not as an error.
func (a *App) InstallMods(ctx context.Context, ids []domain.WorkshopID) ([]domain.InstallOutcome, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	outcomes, err := gateway.InstallMods(ctx, a.gw, ids)
	if err != nil {
		a.log.Error().Err(err).Int("count", len(ids)).Msg("installing mods")
		return nil, fmt.Errorf("installing mods: %w", err)
	}
	for _, o := range outcomes {
		if !o.Success {
			a.log.Warn().Stringer("mod", o.ModID).Str("reason", o.Message).Msg("mod not installed")
		}
	}
	return outcomes, a.Installed.Refresh(ctx)
}

// GetModByID returns the installed mod with id
func (a *App) GetModByID(id domain.WorkshopID) (domain.Mod, bool) {
	return a.Installed.Get(id)
}

// GetProfileByName returns the mod list named name
func (a *App) GetProfileByName(name string) (domain.ModList, bool) {
	return a.Profiles.Get(name)
}

// IsModEnabled reports whether id is a member of list. A nil list enables nothing.
func IsModEnabled(id domain.WorkshopID, list *domain.ModList) bool {
	if list == nil {
		return false
	}
	return list.Contains(id.String())
}

// IsBarotraumaMod asks the backend whether a Workshop item belongs to Barotrauma
func (a *App) IsBarotraumaMod(ctx context.Context, id domain.WorkshopID) (bool, error) {
	return gateway.IsBarotraumaMod(ctx, a.gw, id)
}

// ModOccupation returns the on-disk size of an installed mod
func (a *App) ModOccupation(ctx context.Context, id domain.WorkshopID) (uint64, error) {
	return gateway.GetModOccupation(ctx, a.gw, id)
}

// ModHash returns the content hash of an installed mod
func (a *App) ModHash(ctx context.Context, id domain.WorkshopID) (string, error) {
	return gateway.GetModHash(ctx, a.gw, id)
}

// WorkshopItems looks up Workshop metadata for ids
func (a *App) WorkshopItems(ctx context.Context, ids []domain.WorkshopID) ([]domain.WorkshopItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return gateway.GetWorkshopItems(ctx, a.gw, ids)
}

// BuildInfo returns the backend's build descriptor
func (a *App) BuildInfo(ctx context.Context) (domain.BuildInfo, error) {
	return gateway.GetBuildInfo(ctx, a.gw)
}

// DetectGameHome finds Barotrauma in the local Steam libraries and stores
// its path as the game home. roots overrides the default Steam locations.
func (a *App) DetectGameHome(ctx context.Context, roots ...string) (steam.Installation, error) {
	inst, err := steam.FindBarotrauma(roots...)
	if err != nil {
		return steam.Installation{}, err
	}
	if _, err := a.Config.UpdateInstallPath(ctx, inst.InstallPath); err != nil {
		return inst, err
	}
	a.log.Info().Str("path", inst.InstallPath).Msg("game home detected")
	return inst, nil
}

// SubscribedItems lists the Workshop items Steam has downloaded for the
// detected installation that are not yet in the installed collection
func (a *App) SubscribedItems(roots ...string) ([]steam.WorkshopItem, error) {
	inst, err := steam.FindBarotrauma(roots...)
	if err != nil {
		return nil, err
	}
	items, err := inst.WorkshopItems()
	if err != nil {
		return nil, err
	}
	var missing []steam.WorkshopItem
	for _, it := range items {
		if _, ok := a.Installed.Get(it.ID); !ok {
			missing = append(missing, it)
		}
	}
	return missing, nil
}

// ExportProfile writes the named mod list to a YAML file
func (a *App) ExportProfile(name, path string) error {
	list, ok := a.Profiles.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return config.WriteProfileFile(path, list)
}

// ImportProfile reads a YAML profile and saves it, updating a mod list of
// the same name if one is known
func (a *App) ImportProfile(ctx context.Context, path string) (domain.ModList, error) {
	list, err := config.ReadProfileFile(path)
	if err != nil {
		return domain.ModList{}, err
	}
	if err := a.Profiles.Save(ctx, list); err != nil {
		return list, err
	}
	return list, nil
}
