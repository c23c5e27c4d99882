// Package reconcile merges freshly retrieved Workshop metadata into the
// installed and enabled mod collections.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"
	"barobaro/internal/store"
)

// Result counts what a reconcile pass touched
type Result struct {
	Installed int // records updated in the installed collection
	Enabled   int // records updated in the enabled collection
	Dropped   int // batch records that matched neither collection
}

// Reconciler merges metadata batches into two independent mod collections.
// Call it only after both collections have finished their latest refresh.
type Reconciler struct {
	installed *store.ModStore
	enabled   *store.ModStore
	gw        gateway.Gateway
	log       zerolog.Logger
}

// New creates a reconciler over the installed and enabled stores
func New(installed, enabled *store.ModStore, gw gateway.Gateway, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		installed: installed,
		enabled:   enabled,
		gw:        gw,
		log:       log.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile overwrites every known record whose ID appears in batch with the
// batch record's fields. Existing records keep their identity. Batch records
// with unknown IDs are dropped.
func (r *Reconciler) Reconcile(batch []domain.Mod) Result {
	var res Result
	matched := make(map[domain.WorkshopID]bool, len(batch))

	r.enabled.Annotate(func(byID map[domain.WorkshopID][]*domain.Mod) bool {
		res.Enabled = merge(byID, batch, matched)
		return res.Enabled > 0
	})
	r.installed.Annotate(func(byID map[domain.WorkshopID][]*domain.Mod) bool {
		res.Installed = merge(byID, batch, matched)
		return res.Installed > 0
	})

	for _, rec := range batch {
		if !matched[rec.SteamWorkshopID] {
			res.Dropped++
		}
	}

	r.log.Debug().
		Int("batch", len(batch)).
		Int("installed", res.Installed).
		Int("enabled", res.Enabled).
		Int("dropped", res.Dropped).
		Msg("metadata reconciled")
	return res
}

// Retrieve asks the backend for metadata on mods in batches of batchSize and
// reconciles the reply.
func (r *Reconciler) Retrieve(ctx context.Context, mods []domain.Mod, batchSize int) (Result, error) {
	if len(mods) == 0 {
		return Result{}, nil
	}
	batch, err := gateway.RetrieveModMetadata(ctx, r.gw, mods, batchSize)
	if err != nil {
		r.log.Error().Err(err).Int("mods", len(mods)).Msg("retrieving metadata")
		return Result{}, fmt.Errorf("retrieving metadata: %w", err)
	}
	return r.Reconcile(batch), nil
}

// merge assigns each batch record onto every existing record with its ID
// and returns how many records changed
func merge(byID map[domain.WorkshopID][]*domain.Mod, batch []domain.Mod, matched map[domain.WorkshopID]bool) int {
	n := 0
	for _, rec := range batch {
		records := byID[rec.SteamWorkshopID]
		if len(records) == 0 {
			continue
		}
		for _, existing := range records {
			*existing = rec.Clone()
		}
		matched[rec.SteamWorkshopID] = true
		n += len(records)
	}
	return n
}
