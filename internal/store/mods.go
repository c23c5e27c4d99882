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

// ModKind selects which backend collection a ModStore mirrors
type ModKind int

const (
	// Installed mirrors list_installed_mods
	Installed ModKind = iota
	// Enabled mirrors list_enabled_mods
	Enabled
)

func (k ModKind) String() string {
	if k == Enabled {
		return "enabled"
	}
	return "installed"
}

// ModStore mirrors one mod collection. Membership only changes on Refresh;
// Annotate is the single path that edits existing records.
type ModStore struct {
	kind ModKind
	gw   gateway.Gateway
	log  zerolog.Logger

	mu   sync.RWMutex
	mods []*domain.Mod

	changes *watch.Broadcaster[[]domain.Mod]
}

// NewModStore creates an empty store for kind
func NewModStore(kind ModKind, gw gateway.Gateway, log zerolog.Logger) *ModStore {
	return &ModStore{
		kind:    kind,
		gw:      gw,
		log:     log.With().Str("component", kind.String()+"_mods").Logger(),
		changes: watch.New[[]domain.Mod](),
	}
}

// Kind returns which collection the store mirrors
func (s *ModStore) Kind() ModKind {
	return s.kind
}

// Refresh replaces the collection wholesale. On failure the previous
// collection is kept.
func (s *ModStore) Refresh(ctx context.Context) error {
	var (
		mods []domain.Mod
		err  error
	)
	if s.kind == Enabled {
		mods, err = gateway.ListEnabledMods(ctx, s.gw)
	} else {
		mods, err = gateway.ListInstalledMods(ctx, s.gw)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("refreshing mods")
		return fmt.Errorf("refreshing %s mods: %w", s.kind, err)
	}

	records := make([]*domain.Mod, len(mods))
	for i := range mods {
		m := mods[i].Clone()
		records[i] = &m
	}

	s.mu.Lock()
	s.mods = records
	s.mu.Unlock()

	s.log.Debug().Int("count", len(records)).Msg("mods refreshed")
	s.changes.Publish(s.Mods())
	return nil
}

// Mods returns a copy of the collection in backend order
func (s *ModStore) Mods() []domain.Mod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Mod, len(s.mods))
	for i, m := range s.mods {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the collection size
func (s *ModStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mods)
}

// Get returns the mod with id
func (s *ModStore) Get(id domain.WorkshopID) (domain.Mod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mods {
		if m.SteamWorkshopID == id {
			return m.Clone(), true
		}
	}
	return domain.Mod{}, false
}

// Ref returns the live record for id. The pointer stays valid until the
// next Refresh; its fields change only through Annotate.
func (s *ModStore) Ref(id domain.WorkshopID) *domain.Mod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mods {
		if m.SteamWorkshopID == id {
			return m
		}
	}
	return nil
}

// Annotate runs fn with the collection's records indexed by ID while holding
// the write lock. An ID the backend listed more than once maps to every one
// of its records, in backend order. fn may assign through the pointers but
// must not retain them. Subscribers are notified if fn reports a change.
func (s *ModStore) Annotate(fn func(byID map[domain.WorkshopID][]*domain.Mod) bool) {
	s.mu.Lock()
	byID := make(map[domain.WorkshopID][]*domain.Mod, len(s.mods))
	for _, m := range s.mods {
		byID[m.SteamWorkshopID] = append(byID[m.SteamWorkshopID], m)
	}
	changed := fn(byID)
	s.mu.Unlock()

	if changed {
		s.changes.Publish(s.Mods())
	}
}

// Subscribe returns a channel that receives the collection after each change
func (s *ModStore) Subscribe() (string, <-chan []domain.Mod) {
	return s.changes.Subscribe()
}

// Unsubscribe releases a subscription made with Subscribe
func (s *ModStore) Unsubscribe(id string) {
	s.changes.Unsubscribe(id)
}
