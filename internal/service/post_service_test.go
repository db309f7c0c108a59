package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"photolock/api/internal/ingest"
	"photolock/api/internal/models"
)

// Input validation runs before any collaborator is touched, so a zero-wired
// service is enough to cover it.
func newBarePostService() *PostService {
	return NewPostService(nil, nil, nil, nil, "", zerolog.Nop())
}

func TestCreateRejectsEmptyPost(t *testing.T) {
	svc := newBarePostService()

	_, err := svc.Create(context.Background(), CreatePostInput{UserID: "u1", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyPost)
}

func TestCreateRejectsOversizedSelection(t *testing.T) {
	svc := newBarePostService()

	atts := make([]models.Attachment, ingest.MaxAttachments+1)
	for i := range atts {
		atts[i] = models.Attachment{ID: "att", Data: []byte("x"), FileName: "att.png", MIME: "image/png"}
	}

	_, err := svc.Create(context.Background(), CreatePostInput{
		UserID:      "u1",
		Text:        "too many",
		Attachments: atts,
	})
	assert.ErrorIs(t, err, ingest.ErrQuotaExceeded)
}
