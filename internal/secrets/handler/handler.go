package handler

import (
	"errors"
	"net/http"

	"secrets-service/internal/logger"
	"secrets-service/internal/middleware"
	"secrets-service/internal/secrets"
	"secrets-service/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *secrets.Service
}

func NewHandler(service *secrets.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the secrets routes. The all-secrets listing is
// deliberately public; submission and per-account listing require a
// session.
func (h *Handler) RegisterRoutes(r *gin.Engine, auth *middleware.AuthMiddleware) {
	r.GET("/secrets", h.ListAll)

	protected := r.Group("/")
	protected.Use(middleware.GinRequireAuth(auth))
	protected.POST("/submit", h.Submit)
	protected.GET("/secrets/:accountID", h.ListForAccount)
}

// ListAll returns every account with at least one secret, decrypted.
// The projection is independent of who is asking.
func (h *Handler) ListAll(c *gin.Context) {
	listing, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		logger.Error("secrets listing failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": listing})
}

type submitRequest struct {
	Secret string `json:"secret"`
}

func (h *Handler) Submit(c *gin.Context) {
	account, ok := middleware.AccountFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.service.Submit(c.Request.Context(), account.ID, req.Secret)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		logger.Error("secret submit failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "submitted"})
}

func (h *Handler) ListForAccount(c *gin.Context) {
	accountID := c.Param("accountID")

	entries, err := h.service.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		logger.Error("secrets listing failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"secrets": entries})
}
