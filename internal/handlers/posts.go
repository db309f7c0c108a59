package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"photolock/api/internal/ingest"
	"photolock/api/internal/repository"
	"photolock/api/internal/service"
)

type createPostRequest struct {
	Text string `json:"text"`
}

// CreatePost publishes the user's current draft: text plus whatever is in the
// draft selection. The draft is discarded only after the post is durable.
func (h HandlerSet) CreatePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), service.CreatePostInput{
		UserID:      user.ID,
		Text:        req.Text,
		Attachments: h.drafts.Attachments(user.ID),
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyPost) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty_post"})
			return
		}
		if errors.Is(err, ingest.ErrQuotaExceeded) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "attachment_limit_reached"})
			return
		}
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("create post failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_post_failed"})
		return
	}

	h.drafts.Discard(user.ID)

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h HandlerSet) GetPost(c *gin.Context) {
	view, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h HandlerSet) ListMyPosts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	views, err := h.posts.ListByUser(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": views})
}

func (h HandlerSet) DeletePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminListPosts(c *gin.Context) {
	limit, offset := pagination(c)
	views, err := h.posts.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": views})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
