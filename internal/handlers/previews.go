package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServePreview streams the in-memory preview bytes for a draft attachment.
// The URL's HMAC signature is the only credential; a released preview is gone.
func (h HandlerSet) ServePreview(c *gin.Context) {
	data, mime, err := h.previews.Open(c.Param("id"), c.Query("sig"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview_not_found"})
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, mime, data)
}
