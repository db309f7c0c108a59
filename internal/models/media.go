package models

// Metadata is the authenticity record returned by the verification endpoint.
// All fields are optional; unrecognized fields in the response are dropped.
type Metadata struct {
	Fingerprint  string `json:"fingerprint,omitempty"`
	CameraNumber string `json:"camera_number,omitempty"`
	LocationData string `json:"location_data,omitempty"`
	DateData     string `json:"date_data,omitempty"`
	TimeData     string `json:"time_data,omitempty"`
	Signature    string `json:"signature,omitempty"`
}

// VerificationResult is produced exactly once per verification call. Metadata
// is non-nil only when IsValid is true; Error is set only when it is not.
type VerificationResult struct {
	IsValid  bool
	Metadata *Metadata
	Error    string
}

// MediaReference identifies a piece of media before its bytes are fetched.
type MediaReference struct {
	Key     string
	IsVideo bool
}

// Attachment is a validated media item ready to be included in a post. The
// file name extension always matches the actual container of Data: .mp4 for
// video, .png for images, regardless of the original upload's extension.
type Attachment struct {
	ID       string
	Data     []byte
	MIME     string
	FileName string
	IsValid  bool
	Metadata *Metadata
}

// PreviewEntry is the UI-facing handle to an attachment's bytes. PreviewURL
// points at a transient, process-local resource that must be released exactly
// once when the entry is removed or replaced.
type PreviewEntry struct {
	ID         string
	PreviewURL string
	AltText    string
	IsValid    bool
	Metadata   *Metadata
}

// GalleryItem is a single entry of a camera gallery listing: an object in the
// camera's bucket together with a time-limited signed URL for display.
type GalleryItem struct {
	Key      string
	MediaURL string
	IsVideo  bool
}
