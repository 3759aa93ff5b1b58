package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/index"
)

const maxBodyBytes = 1 << 20

type handler struct {
	rec      Recommender
	defaultN int
	maxN     int
}

// recommendRequest 是推荐接口的请求体。ID 可能是字符串或数字，统一按 NormalizeID 处理。
type recommendRequest struct {
	UserID           any    `json:"user_id"`
	BookID           any    `json:"book_id"`
	UserPreferences  string `json:"user_preferences"`
	NRecommendations *int   `json:"n_recommendations"`

	// n 是解析后的数量，字段缺省时取 defaultN
	n int
}

func (req *recommendRequest) userID() string {
	id, _ := core.NormalizeID(req.UserID)
	return id
}

func (req *recommendRequest) bookID() string {
	id, _ := core.NormalizeID(req.BookID)
	return id
}

func (req *recommendRequest) preferences() string {
	return strings.TrimSpace(req.UserPreferences)
}

type recommendationsResponse struct {
	Recommendations any `json:"recommendations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type refreshResponse struct {
	Message string      `json:"message"`
	Stats   index.Stats `json:"stats"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	stats := h.rec.Stats()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "recommendation service is running",
		"books":   stats.Books,
		"version": stats.Version,
	})
}

func (h *handler) contentBased(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	bookID := req.bookID()
	if bookID == "" {
		respondError(w, r, http.StatusBadRequest, "Book ID is required", nil)
		return
	}
	recs := h.rec.GetContentBased(r.Context(), bookID, req.n)
	respondJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recs})
}

func (h *handler) collaborative(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	userID := req.userID()
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, "User ID is required", nil)
		return
	}
	recs := h.rec.GetCollaborative(r.Context(), userID, req.n)
	respondJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recs})
}

func (h *handler) aiEnhanced(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	prefs := req.preferences()
	if prefs == "" {
		respondError(w, r, http.StatusBadRequest, "User preferences are required", nil)
		return
	}
	recs := h.rec.GetKeywordExpanded(r.Context(), prefs, req.n)
	respondJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recs})
}

func (h *handler) hybrid(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res := h.rec.GetHybrid(r.Context(), engine.HybridRequest{
		UserID:      req.userID(),
		BookID:      req.bookID(),
		Preferences: req.preferences(),
		N:           req.n,
	})
	respondJSON(w, http.StatusOK, recommendationsResponse{Recommendations: res})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rec.Refresh(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsUnavailable(err) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, r, status, "Refresh failed", err)
		return
	}
	respondJSON(w, http.StatusOK, refreshResponse{Message: "Indices refreshed", Stats: stats})
}

// decode 解析请求体；空请求体视为空对象。
// n_recommendations 缺省时取 defaultN，显式的 0 原样交给引擎（结果为空）。
func (h *handler) decode(w http.ResponseWriter, r *http.Request) (*recommendRequest, bool) {
	req := &recommendRequest{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(req)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "Invalid JSON body", err)
		return nil, false
	}
	req.n = h.defaultN
	if req.NRecommendations != nil {
		req.n = *req.NRecommendations
	}
	switch {
	case req.n < 0:
		respondError(w, r, http.StatusBadRequest, "n_recommendations must not be negative", nil)
		return nil, false
	case req.n > h.maxN:
		respondError(w, r, http.StatusBadRequest,
			fmt.Sprintf("n_recommendations must not exceed %d", h.maxN), nil)
		return nil, false
	}
	return req, true
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	ev := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg(message)
	respondJSON(w, status, errorResponse{Error: message})
}
