package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"photolock/api/internal/ingest"
	"photolock/api/internal/service"
)

// UploadFiles ingests a multipart batch of local files into the user's draft.
// A replaceId form value swaps one selected attachment in place instead of
// appending; the selection can never grow past the quota on that path.
func (h HandlerSet) UploadFiles(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replaceID := c.PostForm("replaceId")

	headers := form.File["files"]
	files := make([]ingest.FileInput, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file " + header.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file " + header.Filename})
			return
		}
		files = append(files, ingest.FileInput{
			Name: header.Filename,
			Size: header.Size,
			Data: data,
		})
	}

	previews, err := h.drafts.UploadLocal(c.Request.Context(), user.ID, files, replaceID)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrQuotaExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "attachment_limit_reached"})
		case errors.Is(err, ingest.ErrNoValidMedia):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no_supported_media"})
		case errors.Is(err, service.ErrSingleReplacement):
			c.JSON(http.StatusBadRequest, gin.H{"error": "replacement_takes_one_file"})
		case errors.Is(err, service.ErrAttachmentNotSelected):
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment_not_selected"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"previews": previews})
}

func (h HandlerSet) DraftPreviews(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"previews": h.drafts.Previews(user.ID)})
}

func (h HandlerSet) RemoveAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !h.drafts.Remove(user.ID, c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment_not_selected"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DiscardDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	h.drafts.Discard(user.ID)
	c.Status(http.StatusNoContent)
}
