package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/files-manager/internal/database"
	"github.com/files-manager/internal/session"
)

// handleStatus reports reachability of the two stores the request path
// depends on.
func handleStatus(db *database.DB, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, gin.H{
			"redis": sessions.Ping(ctx) == nil,
			"db":    db.Ping(ctx) == nil,
		})
	}
}

func handleStats(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		users, err := db.CountUsers(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		files, err := db.CountFiles(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"users": users, "files": files})
	}
}
