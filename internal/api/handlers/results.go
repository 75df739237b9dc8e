package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soniva/backend/internal/voice"
)

type ResultsHandler struct {
	svc *voice.Service
}

func NewResultsHandler(svc *voice.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"), 20, 100)
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	recs, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": recs, "count": len(recs)})
}

// Get returns the full analysis plus song recommendations for its type.
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis ID"})
		return
	}

	rec, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	resp := map[string]interface{}{"analysis": rec}
	if rec.MainType != "" {
		songs, err := h.svc.RecommendedSongs(r.Context(), rec.MainType, rec.Gender, 5)
		if err == nil {
			resp["recommended_songs"] = songs
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ResultsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis ID"})
		return
	}

	rec, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	resp := map[string]string{"id": rec.ID.String(), "status": rec.Status}
	if rec.FailReason != "" {
		resp["fail_reason"] = rec.FailReason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ResultsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis ID"})
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Similar lists other users' voices closest to this analysis.
func (h *ResultsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis ID"})
		return
	}

	topK := clampLimit(r.URL.Query().Get("top_k"), 10, 50)

	matches, err := h.svc.Similar(r.Context(), id, topK)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": matches, "count": len(matches)})
}

// clampLimit parses a pagination parameter, falling back to def and capping
// at max so a crafted query cannot inflate the SQL LIMIT.
func clampLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
