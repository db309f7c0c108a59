package models

import "time"

type PostStatus string

const (
	PostStatusProcessing PostStatus = "processing"
	PostStatusReady      PostStatus = "ready"
	PostStatusDeleted    PostStatus = "deleted"
)

type Post struct {
	ID        string
	UserID    string
	Text      string
	Status    PostStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostAttachment is the persisted form of an Attachment: the bytes live in the
// posts bucket under ObjectKey, the authenticity verdict travels with the row.
type PostAttachment struct {
	ID           string
	PostID       string
	Bucket       string
	ObjectKey    string
	FileName     string
	MIME         string
	SizeBytes    int64
	Position     int
	IsValid      bool
	Fingerprint  *string
	CameraNumber *string
	LocationData *string
	TimeData     *string
	Signature    *string
	CreatedAt    time.Time
}
