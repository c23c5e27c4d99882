package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/gateway/gatewaytest"
	"barobaro/internal/store"
)

// profileBackend behaves like the backend's mod list storage
type profileBackend struct {
	lists []domain.ModList
	fake  *gatewaytest.Fake
}

func newProfileBackend(lists ...domain.ModList) *profileBackend {
	b := &profileBackend{lists: lists, fake: gatewaytest.New()}
	b.fake.Handle(gateway.CmdListModLists, func(json.RawMessage) (any, error) {
		return b.lists, nil
	})
	b.fake.Handle(gateway.CmdCreateModList, func(args json.RawMessage) (any, error) {
		var in struct {
			ModList domain.ModList `json:"modList"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		for _, l := range b.lists {
			if l.ProfileName == in.ModList.ProfileName {
				return nil, fmt.Errorf("mod list %q already exists", l.ProfileName)
			}
		}
		b.lists = append(b.lists, in.ModList)
		return nil, nil
	})
	b.fake.Handle(gateway.CmdUpdateModList, func(args json.RawMessage) (any, error) {
		var in struct {
			ModList domain.ModList `json:"modList"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		for i, l := range b.lists {
			if l.ProfileName == in.ModList.ProfileName {
				b.lists[i] = in.ModList
				return nil, nil
			}
		}
		return nil, fmt.Errorf("mod list %q not found", in.ModList.ProfileName)
	})
	b.fake.Handle(gateway.CmdDeleteModList, func(args json.RawMessage) (any, error) {
		var in struct {
			ProfileName string `json:"profileName"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		for i, l := range b.lists {
			if l.ProfileName == in.ProfileName {
				b.lists = append(b.lists[:i], b.lists[i+1:]...)
				return nil, nil
			}
		}
		return nil, fmt.Errorf("mod list %q not found", in.ProfileName)
	})
	return b
}

func survival() domain.ModList {
	return domain.ModList{ProfileName: "Survival", BasePackage: "Vanilla", Mods: []string{"1", "2"}}
}

func TestProfileStore_Refresh(t *testing.T) {
	b := newProfileBackend(survival())
	s := store.NewProfileStore(b.fake, zerolog.Nop())

	require.NoError(t, s.Refresh(context.Background()))
	first := s.List()
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, first, s.List())

	got, ok := s.Get("Survival")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, got.Mods)

	_, ok = s.Get("Missing")
	assert.False(t, ok)
}

func TestProfileStore_MutationsRefreshOnce(t *testing.T) {
	ctx := context.Background()
	b := newProfileBackend(survival())
	s := store.NewProfileStore(b.fake, zerolog.Nop())
	require.NoError(t, s.Refresh(ctx))

	tests := []struct {
		name    string
		command string
		run     func() error
		check   func(t *testing.T)
	}{
		{
			name:    "create",
			command: gateway.CmdCreateModList,
			run:     func() error { return s.Create(ctx, "Campaign", "", []string{"9"}) },
			check: func(t *testing.T) {
				got, ok := s.Get("Campaign")
				require.True(t, ok)
				assert.Equal(t, domain.DefaultBasePackage, got.BasePackage)
			},
		},
		{
			name:    "update",
			command: gateway.CmdUpdateModList,
			run: func() error {
				l := survival()
				l.Mods = []string{"2", "1"}
				return s.Update(ctx, l)
			},
			check: func(t *testing.T) {
				got, _ := s.Get("Survival")
				assert.Equal(t, []string{"2", "1"}, got.Mods)
			},
		},
		{
			name:    "delete",
			command: gateway.CmdDeleteModList,
			run:     func() error { return s.Delete(ctx, "Campaign") },
			check: func(t *testing.T) {
				assert.False(t, s.Has("Campaign"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.fake.Reset()
			require.NoError(t, tt.run())

			calls := b.fake.Calls()
			require.Len(t, calls, 2)
			assert.Equal(t, tt.command, calls[0].Command)
			assert.Equal(t, gateway.CmdListModLists, calls[1].Command)
			assert.Equal(t, b.lists, s.List())
			tt.check(t)
		})
	}
}

func TestProfileStore_FailedMutationStillRefreshes(t *testing.T) {
	ctx := context.Background()
	b := newProfileBackend(survival())
	s := store.NewProfileStore(b.fake, zerolog.Nop())

	// the local mirror is stale: the backend already has Survival
	err := s.Create(ctx, "Survival", "Vanilla", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)

	assert.Equal(t, 1, b.fake.Count(gateway.CmdListModLists))
	assert.True(t, s.Has("Survival"))
}

func TestProfileStore_RefreshFailureAfterMutation(t *testing.T) {
	ctx := context.Background()
	b := newProfileBackend()
	s := store.NewProfileStore(b.fake, zerolog.Nop())
	b.fake.Fail(gateway.CmdListModLists, errors.New("backend gone"))

	err := s.Create(ctx, "New", "Vanilla", nil)
	require.Error(t, err)
	assert.Len(t, b.lists, 1)
	assert.Empty(t, s.List())
}

func TestProfileStore_Save(t *testing.T) {
	ctx := context.Background()
	b := newProfileBackend(survival())
	s := store.NewProfileStore(b.fake, zerolog.Nop())
	require.NoError(t, s.Refresh(ctx))

	t.Run("known name updates", func(t *testing.T) {
		b.fake.Reset()
		l := survival()
		l.Mods = []string{"3"}
		require.NoError(t, s.Save(ctx, l))
		assert.Equal(t, 1, b.fake.Count(gateway.CmdUpdateModList))
		assert.Zero(t, b.fake.Count(gateway.CmdCreateModList))
	})

	t.Run("unknown name creates", func(t *testing.T) {
		b.fake.Reset()
		require.NoError(t, s.Save(ctx, domain.ModList{ProfileName: "Fresh", BasePackage: "Vanilla"}))
		assert.Equal(t, 1, b.fake.Count(gateway.CmdCreateModList))
		assert.Zero(t, b.fake.Count(gateway.CmdUpdateModList))
		assert.True(t, s.Has("Fresh"))
	})
}

func TestProfileStore_ValidationSkipsBackend(t *testing.T) {
	ctx := context.Background()
	b := newProfileBackend()
	s := store.NewProfileStore(b.fake, zerolog.Nop())

	err := s.Create(ctx, "Dupes", "Vanilla", []string{"1", "1"})
	require.ErrorIs(t, err, domain.ErrValidation)

	err = s.Update(ctx, domain.ModList{})
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, b.fake.Calls())
}
