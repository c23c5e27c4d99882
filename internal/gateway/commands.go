package gateway

import (
	"context"
	"errors"

	"barobaro/internal/domain"
)

// Backend command names
const (
	CmdReadConfig          = "read_config"
	CmdWriteConfig         = "write_config"
	CmdGetDefaultConfig    = "get_default_config"
	CmdListInstalledMods   = "list_installed_mods"
	CmdListEnabledMods     = "list_enabled_mods"
	CmdListModLists        = "list_mod_lists"
	CmdCreateModList       = "create_mod_list"
	CmdUpdateModList       = "update_mod_list"
	CmdDeleteModList       = "delete_mod_list"
	CmdDownloadMods        = "download_mods"
	CmdInstallMods         = "install_mods"
	CmdRetrieveModMetadata = "retrieve_mod_metadata"
	CmdIsBarotraumaMod     = "is_barotrauma_mod"
	CmdGetBackgroundImage  = "get_background_image"
	CmdGetModOccupation    = "get_mod_occupation"
	CmdGetModHash          = "get_mod_hash"
	CmdGetWorkshopItems    = "get_workshop_items"
	CmdGetBuildInfo        = "get_build_info"
)

type writeConfigArgs struct {
	Config domain.Config `json:"config"`
}

type modIDsArgs struct {
	ModIDs []domain.WorkshopID `json:"modIds"`
}

type modIDArgs struct {
	ModID domain.WorkshopID `json:"modId"`
}

type itemIDArgs struct {
	ItemID domain.WorkshopID `json:"itemId"`
}

type itemIDsArgs struct {
	ItemIDs []domain.WorkshopID `json:"itemIds"`
}

type retrieveMetadataArgs struct {
	Mods      []domain.Mod `json:"mods"`
	BatchSize int          `json:"batchSize"`
}

type modListArgs struct {
	ModList domain.ModList `json:"modList"`
}

type profileNameArgs struct {
	ProfileName string `json:"profileName"`
}

// ReadConfig returns the backend's current persisted configuration
func ReadConfig(ctx context.Context, gw Gateway) (domain.Config, error) {
	return callConfig(ctx, gw, CmdReadConfig)
}

// WriteConfig persists cfg on the backend
func WriteConfig(ctx context.Context, gw Gateway, cfg domain.Config) error {
	return gw.Invoke(ctx, CmdWriteConfig, writeConfigArgs{Config: cfg}, nil)
}

// GetDefaultConfig returns the backend's default configuration
func GetDefaultConfig(ctx context.Context, gw Gateway) (domain.Config, error) {
	return callConfig(ctx, gw, CmdGetDefaultConfig)
}

// callConfig rejects a null reply instead of decoding it into a zero Config
func callConfig(ctx context.Context, gw Gateway, command string) (domain.Config, error) {
	cfg, err := Call[*domain.Config](ctx, gw, command, nil)
	if err != nil {
		return domain.Config{}, err
	}
	if cfg == nil {
		return domain.Config{}, &TransportError{Command: command, Op: OpDecode, Err: errors.New("null configuration")}
	}
	return *cfg, nil
}

// ListInstalledMods returns every installed mod
func ListInstalledMods(ctx context.Context, gw Gateway) ([]domain.Mod, error) {
	return Call[[]domain.Mod](ctx, gw, CmdListInstalledMods, nil)
}

// ListEnabledMods returns the mods enabled in the active profile
func ListEnabledMods(ctx context.Context, gw Gateway) ([]domain.Mod, error) {
	return Call[[]domain.Mod](ctx, gw, CmdListEnabledMods, nil)
}

// ListModLists returns every mod list known to the backend
func ListModLists(ctx context.Context, gw Gateway) ([]domain.ModList, error) {
	return Call[[]domain.ModList](ctx, gw, CmdListModLists, nil)
}

// CreateModList asks the backend to create a mod list
func CreateModList(ctx context.Context, gw Gateway, list domain.ModList) error {
	return gw.Invoke(ctx, CmdCreateModList, modListArgs{ModList: list}, nil)
}

// UpdateModList asks the backend to replace an existing mod list
func UpdateModList(ctx context.Context, gw Gateway, list domain.ModList) error {
	return gw.Invoke(ctx, CmdUpdateModList, modListArgs{ModList: list}, nil)
}

// DeleteModList asks the backend to delete a mod list by name
func DeleteModList(ctx context.Context, gw Gateway, name string) error {
	return gw.Invoke(ctx, CmdDeleteModList, profileNameArgs{ProfileName: name}, nil)
}

// DownloadMods asks the backend to download the given Workshop items
func DownloadMods(ctx context.Context, gw Gateway, ids []domain.WorkshopID) error {
	return gw.Invoke(ctx, CmdDownloadMods, modIDsArgs{ModIDs: ids}, nil)
}

// InstallMods asks the backend to install the given Workshop items
func InstallMods(ctx context.Context, gw Gateway, ids []domain.WorkshopID) ([]domain.InstallOutcome, error) {
	return Call[[]domain.InstallOutcome](ctx, gw, CmdInstallMods, modIDsArgs{ModIDs: ids})
}

// RetrieveModMetadata asks the backend to fill in Workshop metadata for mods,
// querying the Workshop batchSize items at a time.
func RetrieveModMetadata(ctx context.Context, gw Gateway, mods []domain.Mod, batchSize int) ([]domain.Mod, error) {
	return Call[[]domain.Mod](ctx, gw, CmdRetrieveModMetadata, retrieveMetadataArgs{Mods: mods, BatchSize: batchSize})
}

// IsBarotraumaMod reports whether a Workshop item belongs to Barotrauma
func IsBarotraumaMod(ctx context.Context, gw Gateway, id domain.WorkshopID) (bool, error) {
	return Call[bool](ctx, gw, CmdIsBarotraumaMod, itemIDArgs{ItemID: id})
}

// GetBackgroundImage returns the rendered background as a data URI.
// An empty string means no image is configured.
func GetBackgroundImage(ctx context.Context, gw Gateway) (string, error) {
	uri, err := Call[*string](ctx, gw, CmdGetBackgroundImage, nil)
	if err != nil || uri == nil {
		return "", err
	}
	return *uri, nil
}

// GetModOccupation returns the on-disk size of an installed mod in bytes
func GetModOccupation(ctx context.Context, gw Gateway, id domain.WorkshopID) (uint64, error) {
	return Call[uint64](ctx, gw, CmdGetModOccupation, modIDArgs{ModID: id})
}

// GetModHash returns the content hash of an installed mod
func GetModHash(ctx context.Context, gw Gateway, id domain.WorkshopID) (string, error) {
	return Call[string](ctx, gw, CmdGetModHash, modIDArgs{ModID: id})
}

// GetWorkshopItems looks up Workshop metadata for the given items
func GetWorkshopItems(ctx context.Context, gw Gateway, ids []domain.WorkshopID) ([]domain.WorkshopItem, error) {
	return Call[[]domain.WorkshopItem](ctx, gw, CmdGetWorkshopItems, itemIDsArgs{ItemIDs: ids})
}

// GetBuildInfo returns the backend's build descriptor
func GetBuildInfo(ctx context.Context, gw Gateway) (domain.BuildInfo, error) {
	return Call[domain.BuildInfo](ctx, gw, CmdGetBuildInfo, nil)
}
