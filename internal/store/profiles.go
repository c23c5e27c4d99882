package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/watch"
)

// ProfileStore mirrors the backend's mod lists. Mutations are never applied
// locally: each one is followed by exactly one Refresh.
type ProfileStore struct {
	gw  gateway.Gateway
	log zerolog.Logger

	mu    sync.RWMutex
	lists []domain.ModList

	changes *watch.Broadcaster[[]domain.ModList]
}

// NewProfileStore creates an empty store
func NewProfileStore(gw gateway.Gateway, log zerolog.Logger) *ProfileStore {
	return &ProfileStore{
		gw:      gw,
		log:     log.With().Str("component", "profile_store").Logger(),
		changes: watch.New[[]domain.ModList](),
	}
}

// Refresh replaces the collection wholesale. On failure the previous
// collection is kept.
func (s *ProfileStore) Refresh(ctx context.Context) error {
	lists, err := gateway.ListModLists(ctx, s.gw)
	if err != nil {
		s.log.Error().Err(err).Msg("refreshing profiles")
		return fmt.Errorf("refreshing profiles: %w", err)
	}

	s.mu.Lock()
	s.lists = cloneLists(lists)
	s.mu.Unlock()

	s.log.Debug().Int("count", len(lists)).Msg("profiles refreshed")
	s.changes.Publish(s.List())
	return nil
}

// List returns a copy of every mod list in backend order
func (s *ProfileStore) List() []domain.ModList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLists(s.lists)
}

// Get returns the mod list named name
func (s *ProfileStore) Get(name string) (domain.ModList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lists {
		if l.ProfileName == name {
			return l.Clone(), true
		}
	}
	return domain.ModList{}, false
}

// Has reports whether a mod list named name is known locally
func (s *ProfileStore) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Create asks the backend to create a mod list, then refreshes
func (s *ProfileStore) Create(ctx context.Context, name, basePackage string, members []string) error {
	list := domain.Profile{Name: name, BasePackage: basePackage, EnabledMods: members}.ModList()
	if err := list.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "creating profile", name, func() error {
		return gateway.CreateModList(ctx, s.gw, list)
	})
}

// Update asks the backend to replace a mod list, then refreshes
func (s *ProfileStore) Update(ctx context.Context, list domain.ModList) error {
	if err := list.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "updating profile", list.ProfileName, func() error {
		return gateway.UpdateModList(ctx, s.gw, list)
	})
}

// Delete asks the backend to delete a mod list, then refreshes
func (s *ProfileStore) Delete(ctx context.Context, name string) error {
	return s.mutate(ctx, "deleting profile", name, func() error {
		return gateway.DeleteModList(ctx, s.gw, name)
	})
}

// Save updates list if its name is known locally and creates it otherwise.
// A list created elsewhere but not yet refreshed is sent as a create; the
// backend decides whether that is an error.
func (s *ProfileStore) Save(ctx context.Context, list domain.ModList) error {
	if s.Has(list.ProfileName) {
		return s.Update(ctx, list)
	}
	return s.Create(ctx, list.ProfileName, list.BasePackage, list.Mods)
}

// Subscribe returns a channel that receives the collection after each refresh
func (s *ProfileStore) Subscribe() (string, <-chan []domain.ModList) {
	return s.changes.Subscribe()
}

// Unsubscribe releases a subscription made with Subscribe
func (s *ProfileStore) Unsubscribe(id string) {
	s.changes.Unsubscribe(id)
}

// mutate runs op and then refreshes whether or not op succeeded
func (s *ProfileStore) mutate(ctx context.Context, action, name string, op func() error) error {
	opErr := op()
	if opErr != nil {
		s.log.Error().Err(opErr).Str("profile", name).Msg(action)
		opErr = fmt.Errorf("%s %q: %w", action, name, opErr)
	} else {
		s.log.Info().Str("profile", name).Msg(action)
	}
	return errors.Join(opErr, s.Refresh(ctx))
}

func cloneLists(lists []domain.ModList) []domain.ModList {
	out := make([]domain.ModList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}
