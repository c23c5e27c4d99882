package gatewaytest

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
)

// Backend is an in-memory stand-in for the real backend. It keeps its own
// state and answers every command the client issues. Tests read and change
// the exported fields through Lock/Unlock or before wiring the client.
type Backend struct {
	*Fake

	mu         sync.Mutex
	Config     domain.Config
	Defaults   domain.Config
	Installed  []domain.Mod
	Enabled    []domain.Mod
	Lists      []domain.ModList
	Metadata   map[domain.WorkshopID]domain.Mod // what retrieve_mod_metadata returns per ID
	Background *string
	Build      domain.BuildInfo
	Hashes     map[domain.WorkshopID]string
	Sizes      map[domain.WorkshopID]uint64
	Barotrauma map[domain.WorkshopID]bool
	Downloaded []domain.WorkshopID
}

// NewBackend returns a backend seeded with the default configuration
func NewBackend() *Backend {
	b := &Backend{
		Fake:       New(),
		Config:     domain.DefaultConfig(),
		Defaults:   domain.DefaultConfig(),
		Metadata:   make(map[domain.WorkshopID]domain.Mod),
		Hashes:     make(map[domain.WorkshopID]string),
		Sizes:      make(map[domain.WorkshopID]uint64),
		Barotrauma: make(map[domain.WorkshopID]bool),
		Build:      domain.BuildInfo{Version: "0.0.0-test", Commit: "deadbeef", Date: "2025-07-07"},
	}
	b.install()
	return b
}

// Lock guards direct access to the exported state
func (b *Backend) Lock() { b.mu.Lock() }

// Unlock releases Lock
func (b *Backend) Unlock() { b.mu.Unlock() }

func (b *Backend) install() {
	b.handle(gateway.CmdReadConfig, func(json.RawMessage) (any, error) { return b.Config, nil })
	b.handle(gateway.CmdGetDefaultConfig, func(json.RawMessage) (any, error) { return b.Defaults, nil })
	b.handle(gateway.CmdWriteConfig, func(args json.RawMessage) (any, error) {
		var in struct {
			Config domain.Config `json:"config"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		b.Config = in.Config
		return nil, nil
	})
	b.handle(gateway.CmdListInstalledMods, func(json.RawMessage) (any, error) { return b.Installed, nil })
	b.handle(gateway.CmdListEnabledMods, func(json.RawMessage) (any, error) { return b.Enabled, nil })
	b.handle(gateway.CmdListModLists, func(json.RawMessage) (any, error) { return b.Lists, nil })

	b.handle(gateway.CmdCreateModList, func(args json.RawMessage) (any, error) {
		list, err := decodeModList(args)
		if err != nil {
			return nil, err
		}
		if b.listIndex(list.ProfileName) >= 0 {
			return nil, fmt.Errorf("mod list %q already exists", list.ProfileName)
		}
		b.Lists = append(b.Lists, list)
		return nil, nil
	})
	b.handle(gateway.CmdUpdateModList, func(args json.RawMessage) (any, error) {
		list, err := decodeModList(args)
		if err != nil {
			return nil, err
		}
		i := b.listIndex(list.ProfileName)
		if i < 0 {
			return nil, fmt.Errorf("mod list %q not found", list.ProfileName)
		}
		b.Lists[i] = list
		return nil, nil
	})
	b.handle(gateway.CmdDeleteModList, func(args json.RawMessage) (any, error) {
		var in struct {
			ProfileName string `json:"profileName"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		i := b.listIndex(in.ProfileName)
		if i < 0 {
			return nil, fmt.Errorf("mod list %q not found", in.ProfileName)
		}
		b.Lists = slices.Delete(b.Lists, i, i+1)
		return nil, nil
	})

	b.handle(gateway.CmdDownloadMods, func(args json.RawMessage) (any, error) {
		ids, err := decodeModIDs(args)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			b.Downloaded = append(b.Downloaded, id)
			if !b.hasInstalled(id) {
				b.Installed = append(b.Installed, domain.Mod{SteamWorkshopID: id})
			}
		}
		return nil, nil
	})
	b.handle(gateway.CmdInstallMods, func(args json.RawMessage) (any, error) {
		ids, err := decodeModIDs(args)
		if err != nil {
			return nil, err
		}
		outcomes := make([]domain.InstallOutcome, 0, len(ids))
		for _, id := range ids {
			if !b.hasInstalled(id) {
				b.Installed = append(b.Installed, domain.Mod{SteamWorkshopID: id})
			}
			outcomes = append(outcomes, domain.InstallOutcome{ModID: id, Success: true})
		}
		return outcomes, nil
	})
	b.handle(gateway.CmdRetrieveModMetadata, func(args json.RawMessage) (any, error) {
		var in struct {
			Mods      []domain.Mod `json:"mods"`
			BatchSize int          `json:"batchSize"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		if in.BatchSize <= 0 {
			return nil, fmt.Errorf("batch size must be positive")
		}
		out := make([]domain.Mod, 0, len(in.Mods))
		for _, m := range in.Mods {
			if meta, ok := b.Metadata[m.SteamWorkshopID]; ok {
				out = append(out, meta)
			}
		}
		return out, nil
	})

	b.handle(gateway.CmdIsBarotraumaMod, func(args json.RawMessage) (any, error) {
		var in struct {
			ItemID domain.WorkshopID `json:"itemId"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		return b.Barotrauma[in.ItemID], nil
	})
	b.handle(gateway.CmdGetBackgroundImage, func(json.RawMessage) (any, error) { return b.Background, nil })
	b.handle(gateway.CmdGetModOccupation, func(args json.RawMessage) (any, error) {
		id, err := decodeModID(args)
		if err != nil {
			return nil, err
		}
		return b.Sizes[id], nil
	})
	b.handle(gateway.CmdGetModHash, func(args json.RawMessage) (any, error) {
		id, err := decodeModID(args)
		if err != nil {
			return nil, err
		}
		h, ok := b.Hashes[id]
		if !ok {
			return nil, fmt.Errorf("mod %d not installed", id)
		}
		return h, nil
	})
	b.handle(gateway.CmdGetWorkshopItems, func(args json.RawMessage) (any, error) {
		var in struct {
			ItemIDs []domain.WorkshopID `json:"itemIds"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		items := make([]domain.WorkshopItem, 0, len(in.ItemIDs))
		for _, id := range in.ItemIDs {
			meta := b.Metadata[id]
			items = append(items, domain.WorkshopItem{
				PublishedFileID: id,
				Title:           meta.Name,
				Creator:         meta.Creator,
				FileSize:        meta.Size,
				ConsumerAppID:   domain.BarotraumaAppID,
			})
		}
		return items, nil
	})
	b.handle(gateway.CmdGetBuildInfo, func(json.RawMessage) (any, error) { return b.Build, nil })
}

// handle registers fn to run under the backend's lock
func (b *Backend) handle(command string, fn HandlerFunc) {
	b.Fake.Handle(command, func(args json.RawMessage) (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		v, err := fn(args)
		if err != nil {
			return nil, err
		}
		// encode under the lock so replies never race with later mutations
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(raw), nil
	})
}

func (b *Backend) listIndex(name string) int {
	return slices.IndexFunc(b.Lists, func(l domain.ModList) bool { return l.ProfileName == name })
}

func (b *Backend) hasInstalled(id domain.WorkshopID) bool {
	return slices.ContainsFunc(b.Installed, func(m domain.Mod) bool { return m.SteamWorkshopID == id })
}

func decodeModList(args json.RawMessage) (domain.ModList, error) {
	var in struct {
		ModList domain.ModList `json:"modList"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return domain.ModList{}, err
	}
	return in.ModList, nil
}

func decodeModIDs(args json.RawMessage) ([]domain.WorkshopID, error) {
	var in struct {
		ModIDs []domain.WorkshopID `json:"modIds"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, err
	}
	return in.ModIDs, nil
}

func decodeModID(args json.RawMessage) (domain.WorkshopID, error) {
	var in struct {
		ModID domain.WorkshopID `json:"modId"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return 0, err
	}
	return in.ModID, nil
}
