package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photolock/api/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create inserts the post and its attachment rows in one transaction so a
// half-archived post can never be read back.
func (r *PostRepository) Create(ctx context.Context, post models.Post, attachments []models.PostAttachment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const postQuery = `
		INSERT INTO posts (id, user_id, text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, postQuery, post.ID, post.UserID, post.Text, post.Status); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	const attachmentQuery = `
		INSERT INTO post_attachments (
			id, post_id, bucket, object_key, file_name, mime, size_bytes, position,
			is_valid, fingerprint, camera_number, location_data, time_data, signature, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, NOW()
		)
	`
	for _, att := range attachments {
		if _, err := tx.Exec(ctx, attachmentQuery,
			att.ID,
			att.PostID,
			att.Bucket,
			att.ObjectKey,
			att.FileName,
			att.MIME,
			att.SizeBytes,
			att.Position,
			att.IsValid,
			att.Fingerprint,
			att.CameraNumber,
			att.LocationData,
			att.TimeData,
			att.Signature,
		); err != nil {
			return fmt.Errorf("insert attachment %s: %w", att.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (models.Post, error) {
	const query = `
		SELECT id, user_id, text, status, created_at, updated_at
		FROM posts WHERE id = $1 AND status != 'deleted'
	`

	var post models.Post
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.UserID,
		&post.Text,
		&post.Status,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) UpdateStatus(ctx context.Context, id string, status models.PostStatus) error {
	const query = `
		UPDATE posts SET status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	const query = `
		SELECT id, user_id, text, status, created_at, updated_at
		FROM posts
		WHERE user_id = $1 AND status != 'deleted'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	const query = `
		SELECT id, user_id, text, status, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Text,
			&post.Status,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ListStale returns posts stuck in the given status since before the cutoff.
func (r *PostRepository) ListStale(ctx context.Context, status models.PostStatus, cutoff time.Time) ([]models.Post, error) {
	const query = `
		SELECT id, user_id, text, status, created_at, updated_at
		FROM posts
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
	`
	return r.list(ctx, query, status, cutoff)
}

func (r *PostRepository) ListAttachments(ctx context.Context, postID string) ([]models.PostAttachment, error) {
	const query = `
		SELECT id, post_id, bucket, object_key, file_name, mime, size_bytes, position,
		       is_valid, fingerprint, camera_number, location_data, time_data, signature, created_at
		FROM post_attachments
		WHERE post_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.PostAttachment
	for rows.Next() {
		var att models.PostAttachment
		if err := rows.Scan(
			&att.ID,
			&att.PostID,
			&att.Bucket,
			&att.ObjectKey,
			&att.FileName,
			&att.MIME,
			&att.SizeBytes,
			&att.Position,
			&att.IsValid,
			&att.Fingerprint,
			&att.CameraNumber,
			&att.LocationData,
			&att.TimeData,
			&att.Signature,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}
