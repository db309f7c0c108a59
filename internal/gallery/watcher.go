package gallery

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"photolock/api/internal/models"
)

// Lister enumerates a camera gallery bucket, newest first.
type Lister interface {
	ListMedia(ctx context.Context, bucket string) ([]models.MediaReference, error)
}

// URLSigner hands out (cached) signed URLs for gallery objects.
type URLSigner interface {
	Get(ctx context.Context, bucket, key string) (string, error)
}

// Service resolves a camera's gallery into displayable items and offers a
// subscription that refreshes the listing for as long as the subscriber's
// context lives. The subscription replaces free-running interval polling: it
// is cancelled with the consuming view and only delivers on change.
type Service struct {
	lister   Lister
	signer   URLSigner
	interval time.Duration
	log      zerolog.Logger
}

func NewService(lister Lister, signer URLSigner, interval time.Duration, log zerolog.Logger) *Service {
	return &Service{
		lister:   lister,
		signer:   signer,
		interval: interval,
		log:      log,
	}
}

// List returns the gallery of one camera bucket with signed display URLs.
func (s *Service) List(ctx context.Context, bucket string) ([]models.GalleryItem, error) {
	refs, err := s.lister.ListMedia(ctx, bucket)
	if err != nil {
		return nil, err
	}

	items := make([]models.GalleryItem, 0, len(refs))
	for _, ref := range refs {
		url, err := s.signer.Get(ctx, bucket, ref.Key)
		if err != nil {
			return nil, err
		}
		items = append(items, models.GalleryItem{
			Key:      ref.Key,
			MediaURL: url,
			IsVideo:  ref.IsVideo,
		})
	}
	return items, nil
}

// Subscribe delivers the gallery listing immediately and then again whenever
// its contents change, until ctx is cancelled. The returned channel is closed
// on cancellation; a slow receiver skips intermediate snapshots rather than
// blocking the refresh loop.
func (s *Service) Subscribe(ctx context.Context, bucket string) <-chan []models.GalleryItem {
	out := make(chan []models.GalleryItem, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		lastFingerprint := ""

		deliver := func() {
			items, err := s.List(ctx, bucket)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn().Err(err).Str("bucket", bucket).Msg("gallery refresh failed")
				}
				return
			}
			fp := fingerprint(items)
			if fp == lastFingerprint {
				return
			}
			lastFingerprint = fp

			select {
			case out <- items:
			default:
				// Drop the stale pending snapshot, then deliver the fresh one.
				select {
				case <-out:
				default:
				}
				out <- items
			}
		}

		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deliver()
			}
		}
	}()

	return out
}

func fingerprint(items []models.GalleryItem) string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}
	return strings.Join(keys, "\n")
}
