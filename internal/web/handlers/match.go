package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/kozaktomas/facegate/internal/detector"
	"github.com/kozaktomas/facegate/internal/facematch"
	"github.com/kozaktomas/facegate/internal/landmark"
	"github.com/kozaktomas/facegate/internal/refcache"
)

// maxImageBody caps uploaded image size.
const maxImageBody = 16 << 20

// MatchRequest carries the landmark capture to verify.
type MatchRequest struct {
	Capture landmark.Set `json:"capture"`
}

// MatchHandler serves verification requests against the current cache
// snapshot.
type MatchHandler struct {
	scorer     *facematch.Scorer
	holder     *refcache.Holder
	detector   detector.Detector
	shortlistK int

	// Shortlist index memoized per cache snapshot.
	mu        sync.Mutex
	indexedOn *refcache.Cache
	index     *refcache.ShortlistIndex
}

// NewMatchHandler creates a match handler. det may be nil when no
// detector service is configured; image matching then returns 503.
func NewMatchHandler(scorer *facematch.Scorer, holder *refcache.Holder, det detector.Detector, shortlistK int) *MatchHandler {
	return &MatchHandler{
		scorer:     scorer,
		holder:     holder,
		detector:   det,
		shortlistK: shortlistK,
	}
}

// Match verifies a landmark capture posted as JSON.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	h.respondMatch(w, req.Capture)
}

// MatchImage verifies a face photographed by the caller. The image is
// sent through the landmark detector first.
func (h *MatchHandler) MatchImage(w http.ResponseWriter, r *http.Request) {
	if h.detector == nil {
		respondError(w, http.StatusServiceUnavailable, "no detector configured")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read image")
		return
	}

	capture, err := h.detector.Detect(r.Context(), data)
	switch {
	case errors.Is(err, detector.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, "no face detected")
		return
	case errors.Is(err, detector.ErrMultipleFaces):
		respondError(w, http.StatusUnprocessableEntity, "multiple faces detected")
		return
	case err != nil:
		log.Printf("detector error: %v", sanitizeForLog(err.Error()))
		respondError(w, http.StatusBadGateway, "landmark detection failed")
		return
	}

	h.respondMatch(w, capture)
}

func (h *MatchHandler) respondMatch(w http.ResponseWriter, capture landmark.Set) {
	cache := h.holder.Snapshot()
	if cache == nil {
		respondError(w, http.StatusServiceUnavailable, "reference cache not loaded")
		return
	}
	if !capture.HasCore() {
		respondError(w, http.StatusUnprocessableEntity, "capture is missing core landmarks")
		return
	}

	result := h.scorer.Match(capture, h.candidates(cache, capture))
	respondJSON(w, http.StatusOK, result)
}

// candidates returns the samples to score. With a shortlist configured
// and a cache bigger than the shortlist, scoring is restricted to the
// identities of the nearest samples.
func (h *MatchHandler) candidates(cache *refcache.Cache, capture landmark.Set) []facematch.Candidate {
	if h.shortlistK <= 0 || cache.SampleCount() <= h.shortlistK {
		return cache.Candidates()
	}

	idx := h.shortlistFor(cache)
	query := facematch.Normalize(capture)
	ids, err := idx.Nearest(&query, h.shortlistK)
	if err != nil {
		log.Printf("shortlist lookup failed, falling back to full scan: %v", err)
		return cache.Candidates()
	}
	return cache.CandidatesByIdentity(ids)
}

func (h *MatchHandler) shortlistFor(cache *refcache.Cache) *refcache.ShortlistIndex {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.indexedOn != cache {
		h.index = refcache.BuildShortlist(cache)
		h.indexedOn = cache
	}
	return h.index
}
