// Package handler exposes the domain progress HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onestack/internal/platform/metrics"
	"onestack/internal/platform/middleware"
	"onestack/internal/progress"
	"onestack/internal/progress/service"
	id "onestack/pkg/domain"
	dErrors "onestack/pkg/domain-errors"
	"onestack/pkg/platform/httputil"
	"onestack/pkg/requestcontext"
)

// Service defines the progress operations the handler depends on.
type Service interface {
	UpdateProgress(ctx context.Context, userID id.UserID, req service.UpdateRequest) (*service.UpdateResult, error)
	GetDomainProgress(ctx context.Context, userID id.UserID, domainID string) (*progress.DomainProgress, error)
	AllDomainsProgress(ctx context.Context, userID id.UserID) ([]progress.DomainProgress, int, error)
	RecentActivity(ctx context.Context, userID id.UserID) ([]progress.ActivityEntry, error)
}

// Handler handles the domain progress endpoints.
type Handler struct {
	logger       *slog.Logger
	progress     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new progress Handler.
func New(
	progressSvc Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		progress:     progressSvc,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the progress routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	progressRouter := chi.NewRouter()
	progressRouter.Use(middleware.Recovery(h.logger))
	progressRouter.Use(middleware.RequestID)
	progressRouter.Use(middleware.Logger(h.logger))
	progressRouter.Use(middleware.Timeout(30 * time.Second))
	progressRouter.Use(middleware.ContentTypeJSON)
	progressRouter.Use(middleware.LatencyMiddleware(h.metrics))
	progressRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	progressRouter.Post("/domains/progress", h.handleUpdateProgress)
	progressRouter.Get("/domains/progress", h.handleAllDomainsProgress)
	progressRouter.Get("/domains/progress/{domainId}", h.handleDomainProgress)
	progressRouter.Get("/domains/recent-activity", h.handleRecentActivity)

	r.Mount("/", progressRouter)
}

type updateProgressRequest struct {
	DomainID   string                `json:"domainId"`
	DomainName string                `json:"domainName"`
	Topics     []progress.TopicInput `json:"topics"`
}

type updateProgressResponse struct {
	Success              bool                    `json:"success"`
	Message              string                  `json:"message"`
	DomainProgress       progress.DomainProgress `json:"domainProgress"`
	TotalTopicsCompleted int                     `json:"totalTopicsCompleted"`
}

// handleUpdateProgress replaces one domain's topic list for the
// authenticated user and returns the recomputed progress.
func (h *Handler) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.authenticatedUser(w, ctx, requestID)
	if !ok {
		return
	}

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid update progress request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.progress.UpdateProgress(ctx, userID, service.UpdateRequest{
		DomainID:   req.DomainID,
		DomainName: req.DomainName,
		Topics:     req.Topics,
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeNotFound) || dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "update progress rejected",
				"request_id", requestID,
				"domain_id", req.DomainID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update progress",
			"request_id", requestID,
			"domain_id", req.DomainID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to update domain progress"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updateProgressResponse{
		Success:              true,
		Message:              "Progress updated successfully",
		DomainProgress:       res.DomainProgress,
		TotalTopicsCompleted: res.TotalTopicsCompleted,
	})
}

type domainProgressResponse struct {
	Success        bool                     `json:"success"`
	DomainProgress *progress.DomainProgress `json:"domainProgress"`
}

// handleDomainProgress returns one domain's stored progress, or a null
// domainProgress when the user has never updated that domain.
func (h *Handler) handleDomainProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.authenticatedUser(w, ctx, requestID)
	if !ok {
		return
	}

	domainID := chi.URLParam(r, "domainId")
	dp, err := h.progress.GetDomainProgress(ctx, userID, domainID)
	if err != nil {
		h.writeReadError(w, ctx, requestID, "failed to fetch domain progress", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, domainProgressResponse{Success: true, DomainProgress: dp})
}

type allDomainsResponse struct {
	Success              bool                      `json:"success"`
	DomainsProgress      []progress.DomainProgress `json:"domainsProgress"`
	TotalTopicsCompleted int                       `json:"totalTopicsCompleted"`
}

func (h *Handler) handleAllDomainsProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.authenticatedUser(w, ctx, requestID)
	if !ok {
		return
	}

	domains, total, err := h.progress.AllDomainsProgress(ctx, userID)
	if err != nil {
		h.writeReadError(w, ctx, requestID, "failed to fetch domains progress", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, allDomainsResponse{
		Success:              true,
		DomainsProgress:      domains,
		TotalTopicsCompleted: total,
	})
}

type recentActivityResponse struct {
	Success        bool                     `json:"success"`
	RecentActivity []progress.ActivityEntry `json:"recentActivity"`
}

func (h *Handler) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.authenticatedUser(w, ctx, requestID)
	if !ok {
		return
	}

	activity, err := h.progress.RecentActivity(ctx, userID)
	if err != nil {
		h.writeReadError(w, ctx, requestID, "failed to fetch recent activity", err)
		return
	}
	if activity == nil {
		activity = []progress.ActivityEntry{}
	}

	httputil.WriteJSON(w, http.StatusOK, recentActivityResponse{Success: true, RecentActivity: activity})
}

// authenticatedUser reads the user set by RequireAuth. A zero value means the
// middleware chain is misconfigured.
func (h *Handler) authenticatedUser(w http.ResponseWriter, ctx context.Context, requestID string) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) writeReadError(w http.ResponseWriter, ctx context.Context, requestID, msg string, err error) {
	if dErrors.Is(err, dErrors.CodeNotFound) {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestID,
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
