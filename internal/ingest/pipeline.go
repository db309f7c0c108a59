package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"photolock/api/internal/fetcher"
	"photolock/api/internal/ids"
	"photolock/api/internal/media/svg"
	"photolock/api/internal/models"
	"photolock/api/internal/verify"
)

const attachmentIDLength = 20

// BlobFetcher resolves a gallery key to its display and verification bytes.
type BlobFetcher interface {
	MediaBlobs(ctx context.Context, bucket, key string) (fetcher.MediaBlobs, error)
}

// Verifier checks media authenticity; it degrades instead of failing.
type Verifier interface {
	Verify(ctx context.Context, data []byte, declaredType string) models.VerificationResult
}

// Converter transcodes a verified AVI into MP4.
type Converter interface {
	Convert(ctx context.Context, avi []byte) ([]byte, error)
}

// Pipeline turns raw files or cloud gallery objects into attachments. Remote
// verification and conversion failures degrade the affected attachment to
// unverified; only structural problems (empty batch, quota, bad gallery key)
// abort ingestion.
type Pipeline struct {
	fetcher   BlobFetcher
	verifier  Verifier
	converter Converter
	log       zerolog.Logger
}

func NewPipeline(blobs BlobFetcher, verifier Verifier, converter Converter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   blobs,
		verifier:  verifier,
		converter: converter,
		log:       log,
	}
}

// GalleryInput identifies one object in a camera gallery bucket.
type GalleryInput struct {
	Bucket string
	Key    string
}

// FromGallery imports a single gallery item. Gallery videos already exist in
// both containers, so no conversion happens on this path: the .mp4 is
// displayed and its .avi twin is what gets verified.
func (p *Pipeline) FromGallery(ctx context.Context, in GalleryInput) (models.Attachment, error) {
	blobs, err := p.fetcher.MediaBlobs(ctx, in.Bucket, in.Key)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("gallery fetch: %w", err)
	}

	result := p.verifier.Verify(ctx, blobs.Verify, verify.DeclaredTypeFor(in.Key))

	id := ids.Token(attachmentIDLength)
	isVideo := strings.HasSuffix(in.Key, ".mp4")

	att := models.Attachment{
		ID:       id,
		Data:     blobs.Display,
		IsValid:  result.IsValid,
		Metadata: result.Metadata,
	}
	if isVideo {
		att.FileName = id + ".mp4"
		att.MIME = "video/mp4"
	} else {
		att.FileName = id + ".png"
		att.MIME = "image/png"
	}

	p.log.Debug().
		Str("key", in.Key).
		Str("attachment_id", id).
		Bool("valid", att.IsValid).
		Msg("gallery item ingested")

	return att, nil
}

// FileInput is one locally uploaded file.
type FileInput struct {
	Name string
	Size int64
	Data []byte
}

// BatchOptions carries the quota context. A nil CurrentCount skips the
// selection limit; callers may only do that on the replacement path, where an
// existing attachment is swapped and the selection cannot grow.
type BatchOptions struct {
	CurrentCount *int
}

// FromFiles ingests a local upload batch. Files failing the extension or size
// checks are silently dropped; surviving files are verified (and converted
// when a valid legacy video needs a web-playable container) concurrently.
// Output order always matches input order.
func (p *Pipeline) FromFiles(ctx context.Context, files []FileInput, opts BatchOptions) ([]models.Attachment, error) {
	if len(files) == 0 {
		return nil, ErrNoValidMedia
	}

	if opts.CurrentCount != nil {
		current := *opts.CurrentCount
		if current >= MaxAttachments || len(files) > MaxAttachments-current {
			return nil, ErrQuotaExceeded
		}
	}

	accepted := make([]FileInput, 0, len(files))
	for _, file := range files {
		if !acceptable(file.Name, file.Size) {
			p.log.Debug().Str("file", file.Name).Int64("size", file.Size).Msg("file dropped by validation")
			continue
		}
		if extensionOf(file.Name) == "svg" {
			clean, err := svg.Sanitize(file.Data)
			if err != nil {
				p.log.Debug().Str("file", file.Name).Err(err).Msg("svg rejected")
				continue
			}
			file.Data = clean
		}
		accepted = append(accepted, file)
	}

	if len(accepted) == 0 {
		return nil, ErrNoValidMedia
	}

	attachments := make([]models.Attachment, len(accepted))

	// Each task owns exactly one slot of the result slice, so the fan-out
	// needs no locking and cannot reorder the batch. Tasks degrade their own
	// attachment on failure instead of cancelling siblings.
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range accepted {
		i, file := i, file
		g.Go(func() error {
			attachments[i] = p.processFile(gctx, file)
			return nil
		})
	}
	_ = g.Wait()

	return attachments, nil
}

func (p *Pipeline) processFile(ctx context.Context, file FileInput) models.Attachment {
	id := ids.Token(attachmentIDLength)
	ext := CanonicalExtension(file.Name)

	att := models.Attachment{
		ID:       id,
		Data:     file.Data,
		FileName: id + "." + ext,
	}
	if ext == "mp4" {
		att.MIME = "video/mp4"
	} else {
		att.MIME = "image/png"
	}

	result := p.verifier.Verify(ctx, file.Data, verify.DeclaredTypeFor(file.Name))
	att.IsValid = result.IsValid
	att.Metadata = result.Metadata

	// A verified legacy container still has to be displayable: convert it,
	// and treat a failed conversion as invalid even though verification
	// succeeded.
	if att.IsValid && strings.HasSuffix(strings.ToLower(file.Name), ".avi") {
		mp4, err := p.converter.Convert(ctx, file.Data)
		if err != nil {
			p.log.Warn().Str("file", file.Name).Err(err).Msg("conversion failed")
			att.IsValid = false
		} else {
			att.Data = mp4
		}
	}

	return att
}
