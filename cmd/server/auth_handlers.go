package main

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/files-manager/internal/auth"
	"github.com/files-manager/internal/middleware"
	"github.com/files-manager/internal/models"
)

func handleCreateUser(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UserCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email"})
			return
		}

		user, err := authService.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			switch err {
			case auth.ErrMissingEmail:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email"})
			case auth.ErrMissingPassword:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Missing password"})
			case auth.ErrDuplicateEmail:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Already exist"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add new user"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
	}
}

func handleGetMe(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUser(c)

		user, err := authService.UserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email})
	}
}

// handleConnect exchanges Basic credentials for a session token.
func handleConnect(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := basicCredentials(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		token, err := authService.Login(c.Request.Context(), email, password)
		if err != nil {
			if err == auth.ErrInvalidCredentials {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to make user session"})
			return
		}

		c.JSON(http.StatusOK, models.UserLoginResponse{Token: token})
	}
}

func handleDisconnect(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(middleware.TokenHeader)

		if err := authService.Logout(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func basicCredentials(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}

	email, password, ok = strings.Cut(string(decoded), ":")
	return email, password, ok
}
