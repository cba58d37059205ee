package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/files-manager/internal/auth"
	"github.com/files-manager/internal/files"
	"github.com/files-manager/internal/middleware"
	"github.com/files-manager/internal/models"
)

// currentUser reads the id set by the auth middleware. Routes without
// AuthRequired see auth.Anonymous.
func currentUser(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return auth.Anonymous
	}
	return id
}

func handleUploadFile(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FileCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
			return
		}

		node, err := fileService.Create(c.Request.Context(), currentUser(c), req)
		if err != nil {
			writeFileError(c, err)
			return
		}

		c.JSON(http.StatusCreated, node)
	}
}

func handleGetFile(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		node, err := fileService.Get(c.Request.Context(), currentUser(c), c.Param("id"))
		if err != nil {
			writeFileError(c, err)
			return
		}

		c.JSON(http.StatusOK, node)
	}
}

func handleListFiles(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var page *int
		if n, err := strconv.Atoi(c.Query("page")); err == nil {
			page = &n
		}

		nodes, err := fileService.List(c.Request.Context(), currentUser(c), c.Query("parentId"), page)
		if err != nil {
			writeFileError(c, err)
			return
		}

		c.JSON(http.StatusOK, nodes)
	}
}

func handleSetVisibility(fileService *files.Service, isPublic bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		node, err := fileService.SetVisibility(c.Request.Context(), currentUser(c), c.Param("id"), isPublic)
		if err != nil {
			writeFileError(c, err)
			return
		}

		c.JSON(http.StatusOK, node)
	}
}

// handleGetFileContent serves raw bytes. Identity is optional here:
// public content is readable without a token, so a bad token degrades
// to anonymous instead of failing the request.
func handleGetFileContent(authService *auth.Service, fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := auth.Anonymous
		if token := c.GetHeader(middleware.TokenHeader); token != "" {
			if userID, err := authService.ResolveIdentity(c.Request.Context(), token); err == nil {
				actor = userID
			}
		}

		var size *int
		if n, err := strconv.Atoi(c.Query("size")); err == nil {
			size = &n
		}

		data, err := fileService.ReadContent(c.Request.Context(), actor, c.Param("id"), size)
		if err != nil {
			writeFileError(c, err)
			return
		}

		c.Data(http.StatusOK, http.DetectContentType(data), data)
	}
}

func writeFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, files.ErrMissingName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
	case errors.Is(err, files.ErrMissingType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing type"})
	case errors.Is(err, files.ErrMissingData):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data"})
	case errors.Is(err, files.ErrParentNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent not found"})
	case errors.Is(err, files.ErrParentNotAFolder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent is not a folder"})
	case errors.Is(err, files.ErrNotAFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "A folder doesn't have content"})
	case errors.Is(err, files.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, files.ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add file"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
