package attachments

import (
	"sync"

	"photolock/api/internal/models"
)

// Holder is the draft selection behind a composing view: the attachments the
// user has picked and their preview entries, kept in lockstep (same length,
// same id at each position). Every preview handle that leaves the previews
// sequence is released exactly once.
type Holder struct {
	mu          sync.Mutex
	registrar   Registrar
	attachments []models.Attachment
	previews    []models.PreviewEntry
}

func NewHolder(registrar Registrar) *Holder {
	return &Holder{registrar: registrar}
}

// Add appends a batch, registering a preview handle per attachment.
func (h *Holder) Add(batch []models.Attachment) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, att := range batch {
		h.attachments = append(h.attachments, att)
		h.previews = append(h.previews, h.registrar.Register(att))
	}
}

// Remove deletes the attachment with the given id from both sequences and
// releases its preview handle. Returns false when the id is not selected.
func (h *Holder) Remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, att := range h.attachments {
		if att.ID != id {
			continue
		}
		h.attachments = append(h.attachments[:i], h.attachments[i+1:]...)
		h.previews = append(h.previews[:i], h.previews[i+1:]...)
		h.registrar.Release(id)
		return true
	}
	return false
}

// Replace swaps the attachment with the given id for a new one at the same
// position, releasing the old preview handle and registering one for the
// replacement. Returns false when the id is not selected.
func (h *Holder) Replace(id string, att models.Attachment) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, existing := range h.attachments {
		if existing.ID != id {
			continue
		}
		h.registrar.Release(id)
		h.attachments[i] = att
		h.previews[i] = h.registrar.Register(att)
		return true
	}
	return false
}

// Clear empties the selection, releasing every preview handle.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, preview := range h.previews {
		h.registrar.Release(preview.ID)
	}
	h.attachments = nil
	h.previews = nil
}

func (h *Holder) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.attachments)
}

// Attachments returns a copy of the current selection in order.
func (h *Holder) Attachments() []models.Attachment {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.Attachment, len(h.attachments))
	copy(out, h.attachments)
	return out
}

// Previews returns a copy of the preview entries in selection order.
func (h *Holder) Previews() []models.PreviewEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.PreviewEntry, len(h.previews))
	copy(out, h.previews)
	return out
}
