package handler

import (
	"errors"
	"net/http"

	"secrets-service/internal/logger"
	"secrets-service/internal/store"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	account, err := h.credentialService.Register(
		c.Request.Context(),
		req.Username,
		req.Password,
	)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		logger.Error("register failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration failed"})
		return
	}

	if err := h.establishSession(c, account.ID); err != nil {
		logger.Error("session create failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
