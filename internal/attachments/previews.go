package attachments

import (
	"errors"
	"fmt"
	"sync"

	"photolock/api/internal/models"
	"photolock/api/internal/security"
)

var ErrPreviewNotFound = errors.New("preview not found")

// Registrar owns the transient preview resources backing a draft selection.
type Registrar interface {
	Register(att models.Attachment) models.PreviewEntry
	Release(id string)
}

type previewBlob struct {
	data []byte
	mime string
}

// PreviewRegistry keeps preview bytes in process memory and serves them under
// HMAC-signed URLs. A registered preview holds its bytes until Release; the
// holder guarantees each release happens exactly once.
type PreviewRegistry struct {
	mu       sync.Mutex
	basePath string
	secret   string
	blobs    map[string]previewBlob
}

func NewPreviewRegistry(basePath, secret string) *PreviewRegistry {
	return &PreviewRegistry{
		basePath: basePath,
		secret:   secret,
		blobs:    make(map[string]previewBlob),
	}
}

func (r *PreviewRegistry) Register(att models.Attachment) models.PreviewEntry {
	r.mu.Lock()
	r.blobs[att.ID] = previewBlob{data: att.Data, mime: att.MIME}
	r.mu.Unlock()

	sig := security.SignResource(r.secret, "preview", att.ID)
	return models.PreviewEntry{
		ID:         att.ID,
		PreviewURL: fmt.Sprintf("%s/%s?sig=%s", r.basePath, att.ID, string(sig)),
		AltText:    att.FileName,
		IsValid:    att.IsValid,
		Metadata:   att.Metadata,
	}
}

func (r *PreviewRegistry) Release(id string) {
	r.mu.Lock()
	delete(r.blobs, id)
	r.mu.Unlock()
}

// Open returns the preview bytes for a signed request.
func (r *PreviewRegistry) Open(id, sig string) ([]byte, string, error) {
	if !security.VerifyResource(r.secret, sig, "preview", id) {
		return nil, "", fmt.Errorf("%w: bad signature", ErrPreviewNotFound)
	}

	r.mu.Lock()
	blob, ok := r.blobs[id]
	r.mu.Unlock()

	if !ok {
		return nil, "", ErrPreviewNotFound
	}
	return blob.data, blob.mime, nil
}

func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}
