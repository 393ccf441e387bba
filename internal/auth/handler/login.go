package handler

import (
	"errors"
	"net/http"

	"secrets-service/internal/auth/credentials"
	"secrets-service/internal/logger"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	account, err := h.credentialService.Authenticate(
		c.Request.Context(),
		req.Username,
		req.Password,
	)
	if err != nil {
		if errors.Is(err, credentials.ErrInvalidCredentials) {
			// Uniform response: never reveal which factor failed.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		logger.Error("login failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.establishSession(c, account.ID); err != nil {
		logger.Error("session create failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}
