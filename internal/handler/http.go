package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/playground"
	"github.com/ailearn-gamification/internal/service"
	"github.com/ailearn-gamification/internal/websocket"
)

// Handler provides HTTP handlers for the gamification API
type Handler struct {
	service    *service.GamificationService
	playground *playground.Service
	hub        *websocket.Hub
	logger     *slog.Logger
}

// NewHandler creates a new HTTP handler. The playground service may be nil
// when the sandbox is disabled.
func NewHandler(svc *service.GamificationService, pg *playground.Service, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service:    svc,
		playground: pg,
		hub:        hub,
		logger:     logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Activity ingestion
		r.Post("/activities", h.RecordActivity)
		r.Post("/activities/batch", h.RecordActivityBatch)

		// Per-user views
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Get("/streaks", h.GetStreaks)
			r.Get("/achievements", h.GetAchievements)
			r.Get("/achievements/summary", h.GetProgressSummary)
			r.Get("/achievements/recommendations", h.GetRecommendations)
			r.Get("/activity", h.GetRecentActivity)
			r.Get("/daily-goal", h.GetDailyGoal)
		})

		// Achievement definitions
		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", h.ListAchievements)
			r.Post("/", h.CreateAchievement)
		})

		// Leaderboard views
		r.Route("/leaderboards/{boardType}/{period}", func(r chi.Router) {
			r.Get("/", h.GetLeaderboard)
			r.Get("/around/{userID}", h.GetAroundUser)
			r.Get("/users/{userID}", h.GetUserRank)
		})

		// AI playground sandbox
		r.Post("/playground/prompt", h.TestPrompt)

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeServiceError maps domain errors to HTTP statuses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidActivity),
		errors.Is(err, domain.ErrInvalidLeaderboard):
		h.writeError(w, http.StatusBadRequest, err)
	default:
		h.logger.Error("failed to "+action, "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// RecordActivity handles a single activity event submission
func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	var event domain.ActivityEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.service.RecordActivity(r.Context(), &event)
	if err != nil {
		h.writeServiceError(w, err, "record activity")
		return
	}

	h.writeSuccess(w, result)
}

// RecordActivityBatch handles batch activity submission
func (h *Handler) RecordActivityBatch(w http.ResponseWriter, r *http.Request) {
	var batch domain.BatchActivitySubmission
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if len(batch.Events) == 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	results := h.service.RecordActivityBatch(r.Context(), batch)
	h.writeSuccess(w, map[string]interface{}{
		"received":  len(batch.Events),
		"processed": len(results),
		"results":   results,
	})
}

// GetProfile returns a user's gamification profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	view, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get profile")
		return
	}

	h.writeSuccess(w, view)
}

// UpdateProfile updates a user's display fields
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.UpdateProfileInfo(r.Context(), userID, req.DisplayName, req.AvatarURL); err != nil {
		h.writeServiceError(w, err, "update profile")
		return
	}

	h.writeSuccess(w, map[string]string{"status": "updated"})
}

// GetStreaks returns all streak records for a user
func (h *Handler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	streaks, err := h.service.GetStreaks(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get streaks")
		return
	}

	h.writeSuccess(w, streaks)
}

// GetAchievements returns every achievement with the user's progress
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	progress, err := h.service.GetAchievements(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get achievements")
		return
	}

	h.writeSuccess(w, progress)
}

// GetProgressSummary returns the achievement dashboard aggregates
func (h *Handler) GetProgressSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	summary, err := h.service.GetProgressSummary(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get progress summary")
		return
	}

	h.writeSuccess(w, summary)
}

// GetRecommendations returns the achievements a user is closest to earning
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	recs, err := h.service.GetRecommendations(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get recommendations")
		return
	}

	h.writeSuccess(w, recs)
}

// GetRecentActivity returns a user's latest processed events
func (h *Handler) GetRecentActivity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	events, err := h.service.ListRecentActivity(r.Context(), userID, limit)
	if err != nil {
		h.writeServiceError(w, err, "get recent activity")
		return
	}

	h.writeSuccess(w, events)
}

// GetDailyGoal returns today's XP against the recommended daily goal
func (h *Handler) GetDailyGoal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	goal, err := h.service.GetDailyGoal(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "get daily goal")
		return
	}

	h.writeSuccess(w, goal)
}

// ListAchievements returns all achievement definitions
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.service.ListAchievementDefinitions(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list achievements")
		return
	}

	h.writeSuccess(w, achievements)
}

// CreateAchievement registers or updates an achievement definition
func (h *Handler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var achievement domain.Achievement
	if err := json.NewDecoder(r.Body).Decode(&achievement); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.CreateAchievement(r.Context(), &achievement); err != nil {
		h.writeServiceError(w, err, "create achievement")
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    achievement,
	})
}

// GetLeaderboard returns the top-N view of one board
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	boardType := domain.LeaderboardType(chi.URLParam(r, "boardType"))
	period := domain.Period(chi.URLParam(r, "period"))

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	userID := r.URL.Query().Get("user_id")

	view, err := h.service.GetLeaderboard(r.Context(), boardType, period, limit, userID)
	if err != nil {
		h.writeServiceError(w, err, "get leaderboard")
		return
	}

	h.writeSuccess(w, view)
}

// GetAroundUser returns board entries around a user's rank
func (h *Handler) GetAroundUser(w http.ResponseWriter, r *http.Request) {
	boardType := domain.LeaderboardType(chi.URLParam(r, "boardType"))
	period := domain.Period(chi.URLParam(r, "period"))
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	count := 5
	if rangeStr := r.URL.Query().Get("range"); rangeStr != "" {
		if c, err := strconv.Atoi(rangeStr); err == nil && c > 0 {
			count = c
		}
	}

	entries, err := h.service.GetAroundUser(r.Context(), boardType, period, userID, count)
	if err != nil {
		h.writeServiceError(w, err, "get around user")
		return
	}

	h.writeSuccess(w, entries)
}

// GetUserRank returns a user's rank and score on one board
func (h *Handler) GetUserRank(w http.ResponseWriter, r *http.Request) {
	boardType := domain.LeaderboardType(chi.URLParam(r, "boardType"))
	period := domain.Period(chi.URLParam(r, "period"))
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	entry, err := h.service.GetUserRank(r.Context(), boardType, period, userID)
	if err != nil {
		h.writeServiceError(w, err, "get user rank")
		return
	}

	h.writeSuccess(w, entry)
}

// TestPrompt runs a simulated AI provider call in the sandbox
func (h *Handler) TestPrompt(w http.ResponseWriter, r *http.Request) {
	if h.playground == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("playground is disabled"))
		return
	}

	var req playground.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.playground.TestPrompt(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err, "test prompt")
		return
	}

	h.writeSuccess(w, resp)
}
