package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"photolock/api/internal/attachments"
	"photolock/api/internal/ingest"
	"photolock/api/internal/models"
)

var (
	ErrAttachmentNotSelected = errors.New("attachment not selected")
	ErrSingleReplacement     = errors.New("replacement takes exactly one file")
)

// DraftService keeps one draft selection per user while a post is being
// composed. Selections live in memory only; discarding a draft releases all
// of its preview handles.
type DraftService struct {
	mu        sync.Mutex
	drafts    map[string]*attachments.Holder
	registrar attachments.Registrar
	pipeline  *ingest.Pipeline
	log       zerolog.Logger
}

func NewDraftService(registrar attachments.Registrar, pipeline *ingest.Pipeline, log zerolog.Logger) *DraftService {
	return &DraftService{
		drafts:    make(map[string]*attachments.Holder),
		registrar: registrar,
		pipeline:  pipeline,
		log:       log,
	}
}

func (s *DraftService) holder(userID string) *attachments.Holder {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.drafts[userID]
	if !ok {
		h = attachments.NewHolder(s.registrar)
		s.drafts[userID] = h
	}
	return h
}

// UploadLocal ingests a local file batch into the user's draft. When
// replaceID names a selected attachment, exactly one file is ingested and
// swapped in at its position; the selection size cannot grow on this path, so
// the quota gate is skipped. Otherwise the batch appends under the quota.
func (s *DraftService) UploadLocal(ctx context.Context, userID string, files []ingest.FileInput, replaceID string) ([]models.PreviewEntry, error) {
	h := s.holder(userID)

	if replaceID != "" {
		return s.replaceOne(ctx, h, files, replaceID)
	}

	current := h.Len()
	batch, err := s.pipeline.FromFiles(ctx, files, ingest.BatchOptions{CurrentCount: &current})
	if err != nil {
		return nil, err
	}

	h.Add(batch)
	return h.Previews(), nil
}

func (s *DraftService) replaceOne(ctx context.Context, h *attachments.Holder, files []ingest.FileInput, replaceID string) ([]models.PreviewEntry, error) {
	if len(files) != 1 {
		return nil, ErrSingleReplacement
	}

	batch, err := s.pipeline.FromFiles(ctx, files, ingest.BatchOptions{})
	if err != nil {
		return nil, err
	}

	if !h.Replace(replaceID, batch[0]) {
		return nil, ErrAttachmentNotSelected
	}
	return h.Previews(), nil
}

// ImportGallery adds one camera gallery object to the draft.
func (s *DraftService) ImportGallery(ctx context.Context, userID string, in ingest.GalleryInput) ([]models.PreviewEntry, error) {
	h := s.holder(userID)
	if h.Len() >= ingest.MaxAttachments {
		return nil, ingest.ErrQuotaExceeded
	}

	att, err := s.pipeline.FromGallery(ctx, in)
	if err != nil {
		return nil, err
	}

	h.Add([]models.Attachment{att})
	return h.Previews(), nil
}

// Remove drops one attachment from the draft. Returns false when the id is
// not part of the selection.
func (s *DraftService) Remove(userID string, attachmentID string) bool {
	return s.holder(userID).Remove(attachmentID)
}

// Previews returns the current draft previews in selection order.
func (s *DraftService) Previews(userID string) []models.PreviewEntry {
	return s.holder(userID).Previews()
}

// Attachments returns the current draft attachments in selection order.
func (s *DraftService) Attachments(userID string) []models.Attachment {
	return s.holder(userID).Attachments()
}

// Discard empties and forgets the user's draft.
func (s *DraftService) Discard(userID string) {
	s.mu.Lock()
	h, ok := s.drafts[userID]
	delete(s.drafts, userID)
	s.mu.Unlock()

	if ok {
		h.Clear()
	}
}
