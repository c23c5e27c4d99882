// Package store holds the client's in-memory mirror of backend-owned state.
//
// Each store is the single writer of its snapshot. Readers get copies, and
// every successful change is published on the store's broadcaster.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/watch"
)

// ConfigStore mirrors the backend configuration
type ConfigStore struct {
	gw  gateway.Gateway
	log zerolog.Logger

	mu     sync.RWMutex
	cfg    domain.Config
	loaded bool

	changes *watch.Broadcaster[domain.Config]
}

// NewConfigStore creates an empty store. Nothing is loaded until Refresh or Reset.
func NewConfigStore(gw gateway.Gateway, log zerolog.Logger) *ConfigStore {
	return &ConfigStore{
		gw:      gw,
		log:     log.With().Str("component", "config_store").Logger(),
		changes: watch.New[domain.Config](),
	}
}

// Snapshot returns a copy of the current configuration
func (s *ConfigStore) Snapshot() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Loaded reports whether any refresh, reset or update has succeeded
func (s *ConfigStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Subscribe returns a channel that receives every new snapshot
func (s *ConfigStore) Subscribe() (string, <-chan domain.Config) {
	return s.changes.Subscribe()
}

// Unsubscribe releases a subscription made with Subscribe
func (s *ConfigStore) Unsubscribe(id string) {
	s.changes.Unsubscribe(id)
}

// Refresh replaces the snapshot with the backend's persisted configuration.
// On failure the previous snapshot is kept.
func (s *ConfigStore) Refresh(ctx context.Context) error {
	cfg, err := gateway.ReadConfig(ctx, s.gw)
	if err != nil {
		s.log.Error().Err(err).Msg("refreshing config")
		return fmt.Errorf("refreshing config: %w", err)
	}
	s.publish(cfg)
	s.log.Debug().Msg("config refreshed")
	return nil
}

// Reset replaces the snapshot with the backend's default configuration.
// On failure the previous snapshot is kept.
func (s *ConfigStore) Reset(ctx context.Context) error {
	cfg, err := gateway.GetDefaultConfig(ctx, s.gw)
	if err != nil {
		s.log.Error().Err(err).Msg("resetting config")
		return fmt.Errorf("resetting config: %w", err)
	}
	s.publish(cfg)
	s.log.Info().Msg("config reset to defaults")
	return nil
}

// Update merges patch over the current snapshot, persists the result and only
// then publishes it. Empty install or tool paths in patch keep their current
// values. Concurrent updates are not serialised; the last persisted one wins.
func (s *ConfigStore) Update(ctx context.Context, patch domain.ConfigPatch) (domain.Config, error) {
	if err := patch.Validate(); err != nil {
		return s.Snapshot(), err
	}

	merged := patch.Merge(s.Snapshot())
	if err := gateway.WriteConfig(ctx, s.gw, merged); err != nil {
		s.log.Error().Err(err).Msg("persisting config")
		return s.Snapshot(), fmt.Errorf("persisting config: %w", err)
	}
	s.publish(merged)
	return merged.Clone(), nil
}

// UpdateInstallPath sets the game installation path. The tool path is kept.
func (s *ConfigStore) UpdateInstallPath(ctx context.Context, path string) (domain.Config, error) {
	if path == "" {
		return s.Snapshot(), fmt.Errorf("%w: game home cannot be empty", domain.ErrValidation)
	}
	return s.Update(ctx, domain.ConfigPatch{GameHome: &path})
}

// UpdateToolPath sets the SteamCMD installation path. The game path is kept.
func (s *ConfigStore) UpdateToolPath(ctx context.Context, path string) (domain.Config, error) {
	if path == "" {
		return s.Snapshot(), fmt.Errorf("%w: steamcmd home cannot be empty", domain.ErrValidation)
	}
	return s.Update(ctx, domain.ConfigPatch{SteamCmdHome: &path})
}

// UpdateToolConfig replaces the SteamCMD sub-config. Both paths are kept.
func (s *ConfigStore) UpdateToolConfig(ctx context.Context, tool domain.SteamCmdConfig) (domain.Config, error) {
	return s.Update(ctx, domain.ConfigPatch{SteamCmdConfig: &tool})
}

// UpdateUIConfig replaces the UI sub-config. Both paths are kept.
func (s *ConfigStore) UpdateUIConfig(ctx context.Context, ui domain.UIConfig) (domain.Config, error) {
	return s.Update(ctx, domain.ConfigPatch{UIConfig: &ui})
}

func (s *ConfigStore) publish(cfg domain.Config) {
	s.mu.Lock()
	s.cfg = cfg.Clone()
	s.loaded = true
	s.mu.Unlock()
	s.changes.Publish(cfg.Clone())
}
