package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"photolock/api/internal/fetcher"
	"photolock/api/internal/ingest"
)

// ListGallery returns the authenticated user's camera gallery, newest first,
// each item carrying a time-limited signed display URL.
func (h HandlerSet) ListGallery(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_claims"})
		return
	}
	if claims.CameraNumber == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no_camera_registered"})
		return
	}

	items, err := h.gallery.List(c.Request.Context(), claims.CameraNumber)
	if err != nil {
		h.log.Error().Err(err).Str("bucket", claims.CameraNumber).Msg("gallery listing failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "gallery_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// WatchGallery streams gallery snapshots over server-sent events. A snapshot
// is pushed immediately and then whenever the bucket contents change; the
// stream ends when the client disconnects.
func (h HandlerSet) WatchGallery(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_claims"})
		return
	}
	if claims.CameraNumber == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no_camera_registered"})
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	updates := h.gallery.Subscribe(c.Request.Context(), claims.CameraNumber)
	c.Stream(func(w io.Writer) bool {
		items, open := <-updates
		if !open {
			return false
		}
		c.SSEvent("gallery", gin.H{"items": items})
		return true
	})
}

type importRequest struct {
	Key string `json:"key" binding:"required"`
}

// ImportGalleryItem pulls one gallery object into the user's draft selection.
func (h HandlerSet) ImportGalleryItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	claims, _ := currentClaims(c)
	if claims.CameraNumber == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no_camera_registered"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previews, err := h.drafts.ImportGallery(c.Request.Context(), user.ID, ingest.GalleryInput{
		Bucket: claims.CameraNumber,
		Key:    req.Key,
	})
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrQuotaExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "attachment_limit_reached"})
		case errors.Is(err, fetcher.ErrFetchFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "gallery_unavailable"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"previews": previews})
}
