package queries

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/shared/server/middleware"
	"docqa-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches query routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/query", h.ask)
	rg.GET("/queries", h.history)
}

func (h *Handler) ask(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set("documentId", req.DocumentID)

	q, err := h.Svc.Ask(c.Request.Context(), userID, req.DocumentID, req.QueryText)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", err.Error())
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrGeneration):
			respond.Error(c, http.StatusBadGateway, "generation_error", "failed to generate answer", err.Error())
		case errors.Is(err, ErrPersistence):
			respond.Error(c, http.StatusInternalServerError, "persistence_error", "failed to record query", err.Error())
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to answer query", nil)
		}
		return
	}

	respond.OK(c, toAnswer(q))
}

func (h *Handler) history(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	qs, err := h.Svc.History(c.Request.Context(), userID, c.Query("document_id"))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", err.Error())
			return
		}
		respond.Error(c, http.StatusInternalServerError, "persistence_error", "failed to list queries", err.Error())
		return
	}

	respond.OK(c, toResponses(qs))
}
