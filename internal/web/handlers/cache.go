package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/facegate/internal/refcache"
)

// CacheStatus describes the active cache snapshot.
type CacheStatus struct {
	Loaded        bool      `json:"loaded"`
	Version       int       `json:"version,omitempty"`
	IdentityCount int       `json:"identity_count,omitempty"`
	SampleCount   int       `json:"sample_count,omitempty"`
	BuiltAt       time.Time `json:"built_at,omitzero"`
}

// RefreshResponse reports the outcome of a cache refresh.
type RefreshResponse struct {
	Refreshed bool `json:"refreshed"`
	Version   int  `json:"version"`
	Samples   int  `json:"samples"`
}

// CacheHandler exposes cache inspection and refresh.
type CacheHandler struct {
	holder    *refcache.Holder
	refresher *refcache.Refresher
}

// NewCacheHandler creates a cache handler. refresher may be nil when
// no enrollment source is configured.
func NewCacheHandler(holder *refcache.Holder, refresher *refcache.Refresher) *CacheHandler {
	return &CacheHandler{holder: holder, refresher: refresher}
}

// Status reports the active snapshot.
func (h *CacheHandler) Status(w http.ResponseWriter, r *http.Request) {
	cache := h.holder.Snapshot()
	if cache == nil {
		respondJSON(w, http.StatusOK, CacheStatus{Loaded: false})
		return
	}
	respondJSON(w, http.StatusOK, CacheStatus{
		Loaded:        true,
		Version:       cache.Version(),
		IdentityCount: cache.IdentityCount(),
		SampleCount:   cache.SampleCount(),
		BuiltAt:       cache.BuiltAt(),
	})
}

// Refresh re-pulls enrollment data from the configured source.
func (h *CacheHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "no enrollment source configured")
		return
	}

	cache, refreshed, err := h.refresher.Refresh(r.Context())
	if err != nil {
		log.Printf("cache refresh failed: %v", sanitizeForLog(err.Error()))
		respondError(w, http.StatusBadGateway, "cache refresh failed")
		return
	}

	respondJSON(w, http.StatusOK, RefreshResponse{
		Refreshed: refreshed,
		Version:   cache.Version(),
		Samples:   cache.SampleCount(),
	})
}
