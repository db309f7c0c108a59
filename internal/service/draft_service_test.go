package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolock/api/internal/attachments"
	"photolock/api/internal/fetcher"
	"photolock/api/internal/ingest"
	"photolock/api/internal/models"
)

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, data []byte, declaredType string) models.VerificationResult {
	return models.VerificationResult{IsValid: true, Metadata: &models.Metadata{Fingerprint: "fp"}}
}

type stubConverter struct{}

func (stubConverter) Convert(ctx context.Context, avi []byte) ([]byte, error) {
	return avi, nil
}

type stubBlobFetcher struct {
	blobs map[string]fetcher.MediaBlobs
}

func (f stubBlobFetcher) MediaBlobs(ctx context.Context, bucket, key string) (fetcher.MediaBlobs, error) {
	blobs, ok := f.blobs[key]
	if !ok {
		return fetcher.MediaBlobs{}, fetcher.ErrFetchFailed
	}
	return blobs, nil
}

func newDraftService(blobs map[string]fetcher.MediaBlobs) (*DraftService, *attachments.PreviewRegistry) {
	registry := attachments.NewPreviewRegistry("/api/v1/previews", "test-secret")
	pipeline := ingest.NewPipeline(stubBlobFetcher{blobs: blobs}, stubVerifier{}, stubConverter{}, zerolog.Nop())
	return NewDraftService(registry, pipeline, zerolog.Nop()), registry
}

func pngFile(name string) ingest.FileInput {
	return ingest.FileInput{Name: name, Size: 1024, Data: []byte(name)}
}

func TestUploadLocalAccumulatesPerUser(t *testing.T) {
	svc, registry := newDraftService(nil)

	previews, err := svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("a.png"), pngFile("b.png")}, "")
	require.NoError(t, err)
	require.Len(t, previews, 2)
	assert.Equal(t, 2, registry.Len())

	// A second user's draft is independent.
	previews, err = svc.UploadLocal(context.Background(), "bob", []ingest.FileInput{pngFile("c.png")}, "")
	require.NoError(t, err)
	assert.Len(t, previews, 1)
	assert.Len(t, svc.Attachments("alice"), 2)
}

func TestUploadLocalQuota(t *testing.T) {
	svc, _ := newDraftService(nil)

	batch := []ingest.FileInput{pngFile("1.png"), pngFile("2.png"), pngFile("3.png"), pngFile("4.png")}
	_, err := svc.UploadLocal(context.Background(), "alice", batch, "")
	require.NoError(t, err)

	_, err = svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("5.png")}, "")
	assert.ErrorIs(t, err, ingest.ErrQuotaExceeded)
}

func TestUploadLocalReplaceCannotGrowSelection(t *testing.T) {
	svc, registry := newDraftService(nil)

	batch := []ingest.FileInput{pngFile("1.png"), pngFile("2.png"), pngFile("3.png"), pngFile("4.png")}
	previews, err := svc.UploadLocal(context.Background(), "alice", batch, "")
	require.NoError(t, err)
	require.Len(t, previews, 4)

	// Replacing swaps in place at the same position; repeated replacements
	// never push the selection past the limit.
	replaced := previews[1].ID
	previews, err = svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("5.png")}, replaced)
	require.NoError(t, err)
	require.Len(t, previews, 4)
	assert.NotEqual(t, replaced, previews[1].ID)
	assert.Equal(t, 4, registry.Len())

	previews, err = svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("6.png")}, previews[1].ID)
	require.NoError(t, err)
	assert.Len(t, previews, 4)
	assert.Len(t, svc.Attachments("alice"), 4)
}

func TestUploadLocalReplaceErrors(t *testing.T) {
	svc, _ := newDraftService(nil)

	previews, err := svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("a.png")}, "")
	require.NoError(t, err)

	_, err = svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("b.png"), pngFile("c.png")}, previews[0].ID)
	assert.ErrorIs(t, err, ErrSingleReplacement)

	_, err = svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("b.png")}, "not-selected")
	assert.ErrorIs(t, err, ErrAttachmentNotSelected)
}

func TestImportGalleryQuota(t *testing.T) {
	blobs := map[string]fetcher.MediaBlobs{
		"shot.png": {Display: []byte("png"), Verify: []byte("png")},
	}
	svc, _ := newDraftService(blobs)

	previews, err := svc.ImportGallery(context.Background(), "alice", ingest.GalleryInput{Bucket: "17", Key: "shot.png"})
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.True(t, previews[0].IsValid)

	_, err = svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("1.png"), pngFile("2.png"), pngFile("3.png")}, "")
	require.NoError(t, err)

	_, err = svc.ImportGallery(context.Background(), "alice", ingest.GalleryInput{Bucket: "17", Key: "shot.png"})
	assert.ErrorIs(t, err, ingest.ErrQuotaExceeded)
}

func TestDiscardReleasesPreviews(t *testing.T) {
	svc, registry := newDraftService(nil)

	_, err := svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("a.png"), pngFile("b.png")}, "")
	require.NoError(t, err)
	require.Equal(t, 2, registry.Len())

	svc.Discard("alice")
	assert.Zero(t, registry.Len())
	assert.Empty(t, svc.Previews("alice"))
}

func TestRemoveSingleAttachment(t *testing.T) {
	svc, registry := newDraftService(nil)

	previews, err := svc.UploadLocal(context.Background(), "alice", []ingest.FileInput{pngFile("a.png")}, "")
	require.NoError(t, err)

	assert.False(t, svc.Remove("alice", "missing"))
	assert.True(t, svc.Remove("alice", previews[0].ID))
	assert.Zero(t, registry.Len())
}
