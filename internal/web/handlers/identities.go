package handlers

import (
	"net/http"
	"sort"

	"github.com/kozaktomas/facegate/internal/refcache"
)

// IdentitySummary is one enrolled identity with its sample count.
type IdentitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SampleCount int    `json:"sample_count"`
}

// IdentitiesHandler lists enrolled identities from the cache snapshot.
type IdentitiesHandler struct {
	holder *refcache.Holder
}

func NewIdentitiesHandler(holder *refcache.Holder) *IdentitiesHandler {
	return &IdentitiesHandler{holder: holder}
}

// List returns all enrolled identities sorted by id.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	cache := h.holder.Snapshot()
	if cache == nil {
		respondError(w, http.StatusServiceUnavailable, "reference cache not loaded")
		return
	}

	byID := make(map[string]*IdentitySummary)
	for _, s := range cache.Samples() {
		sum, ok := byID[s.IdentityID]
		if !ok {
			sum = &IdentitySummary{ID: s.IdentityID, Name: s.IdentityName}
			byID[s.IdentityID] = sum
		}
		sum.SampleCount++
	}

	out := make([]IdentitySummary, 0, len(byID))
	for _, sum := range byID {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	respondJSON(w, http.StatusOK, map[string]any{
		"identities": out,
		"count":      len(out),
	})
}
