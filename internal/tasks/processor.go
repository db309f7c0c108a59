package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photolock/api/internal/media/sniffer"
	"photolock/api/internal/models"
	"photolock/api/internal/repository"
	"photolock/api/internal/service"
	"photolock/api/internal/storage"
)

const staleProcessingAge = time.Hour

// Processor executes worker tasks: integrity-checking freshly archived posts,
// purging deleted ones, and the nightly sweep over posts stuck in processing.
type Processor struct {
	store *storage.ObjectStore
	posts *repository.PostRepository
	log   zerolog.Logger
}

type TaskPayload struct {
	Type    string `json:"type"`
	PostID  string `json:"post_id"`
	Bucket  string `json:"bucket"`
	Objects string `json:"objects"`
}

func NewProcessor(store *storage.ObjectStore, posts *repository.PostRepository, log zerolog.Logger) *Processor {
	return &Processor{
		store: store,
		posts: posts,
		log:   log,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case service.TaskPostIngest:
		return p.handleIngest(ctx, payload)
	case service.TaskPostPurge:
		return p.handlePurge(ctx, payload)
	case service.TaskCleanup:
		return p.handleCleanup(ctx)
	default:
		p.log.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

// handleIngest confirms every archived object is present and is a container
// the platform recognizes, then flips the post to ready. A failed check leaves
// the message pending so the task is retried once the archive settles.
func (p *Processor) handleIngest(ctx context.Context, payload TaskPayload) error {
	for _, key := range splitObjects(payload.Objects) {
		size, err := p.store.Stat(ctx, payload.Bucket, key)
		if err != nil {
			return fmt.Errorf("stat %s: %w", key, err)
		}
		if size == 0 {
			return fmt.Errorf("object %s: empty archive", key)
		}
		data, err := p.store.Get(ctx, payload.Bucket, key)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", key, err)
		}
		if _, err := sniffer.Detect(data); err != nil {
			return fmt.Errorf("object %s: %w", key, err)
		}
	}

	if err := p.posts.UpdateStatus(ctx, payload.PostID, models.PostStatusReady); err != nil {
		return fmt.Errorf("mark ready %s: %w", payload.PostID, err)
	}

	p.log.Info().Str("post_id", payload.PostID).Msg("post ingested")
	return nil
}

// handlePurge removes everything under the post's object prefix.
func (p *Processor) handlePurge(ctx context.Context, payload TaskPayload) error {
	removed, err := p.store.RemoveOlderThan(ctx, payload.Bucket, payload.PostID+"/", time.Now())
	if err != nil {
		return fmt.Errorf("purge %s: %w", payload.PostID, err)
	}

	p.log.Info().Str("post_id", payload.PostID).Int("removed", removed).Msg("post purged")
	return nil
}

// handleCleanup re-runs the integrity check for posts that never left the
// processing state, usually because their ingest message was lost.
func (p *Processor) handleCleanup(ctx context.Context) error {
	stale, err := p.posts.ListStale(ctx, models.PostStatusProcessing, time.Now().Add(-staleProcessingAge))
	if err != nil {
		return fmt.Errorf("list stale posts: %w", err)
	}

	for _, post := range stale {
		rows, err := p.posts.ListAttachments(ctx, post.ID)
		if err != nil {
			p.log.Error().Err(err).Str("post_id", post.ID).Msg("list attachments failed")
			continue
		}

		keys := make([]string, 0, len(rows))
		bucket := p.store.PostsBucket()
		for _, row := range rows {
			bucket = row.Bucket
			keys = append(keys, row.ObjectKey)
		}

		err = p.handleIngest(ctx, TaskPayload{
			Type:    service.TaskPostIngest,
			PostID:  post.ID,
			Bucket:  bucket,
			Objects: strings.Join(keys, ","),
		})
		if err != nil {
			p.log.Warn().Err(err).Str("post_id", post.ID).Msg("stale post still incomplete")
		}
	}

	p.log.Info().Int("checked", len(stale)).Msg("cleanup sweep done")
	return nil
}

func splitObjects(objects string) []string {
	if objects == "" {
		return nil
	}
	parts := strings.Split(objects, ",")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
