package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photolock/api/internal/ids"
	"photolock/api/internal/ingest"
	"photolock/api/internal/models"
	"photolock/api/internal/repository"
	"photolock/api/internal/storage"
)

var ErrEmptyPost = errors.New("post has no text or media")

// Queue task types consumed by the worker.
const (
	TaskPostIngest = "post.ingest"
	TaskPostPurge  = "post.purge"
	TaskCleanup    = "storage.cleanup"
)

// PostService archives draft attachments into the posts bucket, records the
// post, and hands integrity checking off to the worker stream.
type PostService struct {
	posts  *repository.PostRepository
	store  *storage.ObjectStore
	urls   *storage.SignedURLCache
	queue  *redis.Client
	stream string
	log    zerolog.Logger
}

func NewPostService(
	posts *repository.PostRepository,
	store *storage.ObjectStore,
	urls *storage.SignedURLCache,
	queue *redis.Client,
	stream string,
	log zerolog.Logger,
) *PostService {
	return &PostService{
		posts:  posts,
		store:  store,
		urls:   urls,
		queue:  queue,
		stream: stream,
		log:    log,
	}
}

type CreatePostInput struct {
	UserID      string
	Text        string
	Attachments []models.Attachment
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (models.Post, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.Attachments) == 0 {
		return models.Post{}, ErrEmptyPost
	}
	// Last line of defense for the selection limit; the draft layer enforces
	// it too, but nothing archived may ever exceed it.
	if len(in.Attachments) > ingest.MaxAttachments {
		return models.Post{}, ingest.ErrQuotaExceeded
	}

	post := models.Post{
		ID:     ids.New(),
		UserID: in.UserID,
		Text:   text,
		Status: models.PostStatusProcessing,
	}

	bucket := s.store.PostsBucket()
	rows := make([]models.PostAttachment, 0, len(in.Attachments))
	keys := make([]string, 0, len(in.Attachments))

	for i, att := range in.Attachments {
		objectKey := path.Join(post.ID, att.FileName)
		if err := s.store.Put(ctx, bucket, objectKey, att.Data, att.MIME); err != nil {
			return models.Post{}, err
		}

		row := models.PostAttachment{
			ID:        att.ID,
			PostID:    post.ID,
			Bucket:    bucket,
			ObjectKey: objectKey,
			FileName:  att.FileName,
			MIME:      att.MIME,
			SizeBytes: int64(len(att.Data)),
			Position:  i,
			IsValid:   att.IsValid,
		}
		if md := att.Metadata; md != nil {
			row.Fingerprint = optional(md.Fingerprint)
			row.CameraNumber = optional(md.CameraNumber)
			row.LocationData = optional(md.LocationData)
			row.TimeData = optional(strings.TrimSpace(md.DateData + " " + md.TimeData))
			row.Signature = optional(md.Signature)
		}
		rows = append(rows, row)
		keys = append(keys, objectKey)
	}

	if err := s.posts.Create(ctx, post, rows); err != nil {
		return models.Post{}, err
	}

	if err := s.enqueue(ctx, map[string]any{
		"type":    TaskPostIngest,
		"post_id": post.ID,
		"bucket":  bucket,
		"objects": strings.Join(keys, ","),
	}); err != nil {
		// The post is durable either way; the nightly sweep will re-check it.
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("enqueue ingest task failed")
	}

	return post, nil
}

func (s *PostService) enqueue(ctx context.Context, values map[string]any) error {
	return s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err()
}

// AttachmentView is an attachment row joined with a fresh signed display URL.
type AttachmentView struct {
	ID       string           `json:"id"`
	MediaURL string           `json:"mediaUrl"`
	MIME     string           `json:"mime"`
	Position int              `json:"position"`
	IsValid  bool             `json:"isValid"`
	Metadata *models.Metadata `json:"metadata,omitempty"`
}

type PostView struct {
	Post        models.Post      `json:"post"`
	Attachments []AttachmentView `json:"attachments"`
}

func (s *PostService) Get(ctx context.Context, id string) (PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return PostView{}, err
	}
	return s.view(ctx, post)
}

func (s *PostService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]PostView, error) {
	posts, err := s.posts.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, posts)
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]PostView, error) {
	posts, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, posts)
}

func (s *PostService) views(ctx context.Context, posts []models.Post) ([]PostView, error) {
	out := make([]PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.view(ctx, post)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *PostService) view(ctx context.Context, post models.Post) (PostView, error) {
	rows, err := s.posts.ListAttachments(ctx, post.ID)
	if err != nil {
		return PostView{}, err
	}

	views := make([]AttachmentView, 0, len(rows))
	for _, row := range rows {
		mediaURL, err := s.urls.Get(ctx, row.Bucket, row.ObjectKey)
		if err != nil {
			s.log.Warn().Err(err).Str("object", row.ObjectKey).Msg("sign attachment url failed")
			mediaURL = ""
		}
		views = append(views, AttachmentView{
			ID:       row.ID,
			MediaURL: mediaURL,
			MIME:     row.MIME,
			Position: row.Position,
			IsValid:  row.IsValid,
			Metadata: metadataFromRow(row),
		})
	}

	return PostView{Post: post, Attachments: views}, nil
}

// Delete marks the post deleted and queues its objects for removal.
func (s *PostService) Delete(ctx context.Context, id string, userID string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return repository.ErrPostNotFound
	}

	if err := s.posts.UpdateStatus(ctx, id, models.PostStatusDeleted); err != nil {
		return err
	}

	// All of a post's objects live under its id prefix; the worker purges the
	// whole prefix so nothing orphaned survives a partial archive.
	if err := s.enqueue(ctx, map[string]any{
		"type":    TaskPostPurge,
		"post_id": id,
		"bucket":  s.store.PostsBucket(),
	}); err != nil {
		s.log.Warn().Err(err).Str("post_id", id).Msg("enqueue purge task failed")
	}
	return nil
}

func metadataFromRow(row models.PostAttachment) *models.Metadata {
	if row.Fingerprint == nil && row.CameraNumber == nil && row.LocationData == nil &&
		row.TimeData == nil && row.Signature == nil {
		return nil
	}
	md := &models.Metadata{}
	if row.Fingerprint != nil {
		md.Fingerprint = *row.Fingerprint
	}
	if row.CameraNumber != nil {
		md.CameraNumber = *row.CameraNumber
	}
	if row.LocationData != nil {
		md.LocationData = *row.LocationData
	}
	if row.TimeData != nil {
		md.TimeData = *row.TimeData
	}
	if row.Signature != nil {
		md.Signature = *row.Signature
	}
	return md
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
