package verify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"photolock/api/internal/models"
)

const (
	TypeImagePNG = "image/png"
	TypeVideoAVI = "video/avi"
)

// Client talks to the remote authenticity endpoint. Verification is never
// fatal: every failure mode degrades to an invalid result so the pipeline can
// carry on with the attachment flagged unverified.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(endpoint string, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		log:      log,
	}
}

type verifyRequest struct {
	Image string `json:"image"`
	Type  string `json:"type"`
}

type verifyResponse struct {
	Result   string           `json:"result"`
	Metadata *models.Metadata `json:"metadata"`
	Error    string           `json:"error"`
}

// Verify submits media bytes for authenticity verification. The endpoint
// only treats a literal "True" result as valid; everything else, including
// transport and decode failures, yields IsValid=false.
func (c *Client) Verify(ctx context.Context, data []byte, declaredType string) models.VerificationResult {
	payload, err := json.Marshal(verifyRequest{
		Image: base64.StdEncoding.EncodeToString(data),
		Type:  declaredType,
	})
	if err != nil {
		return invalid("encode verification request: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return invalid("build verification request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("verification call failed")
		return invalid("verification request failed: " + err.Error())
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return invalid("decode verification response: " + err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := body.Error
		if msg == "" {
			msg = "verification endpoint returned " + resp.Status
		}
		return invalid(msg)
	}

	if body.Result != "True" {
		return invalid("media is not valid; no metadata")
	}
	if body.Metadata == nil {
		// A valid verdict always carries the authenticity record; a bare
		// "True" is indistinguishable from a broken backend.
		return invalid("verification succeeded without metadata")
	}

	return models.VerificationResult{IsValid: true, Metadata: body.Metadata}
}

func invalid(reason string) models.VerificationResult {
	return models.VerificationResult{IsValid: false, Error: reason}
}

// DeclaredTypeFor maps a file name to the content type the verification
// backend expects: the legacy container for video, png for everything else.
func DeclaredTypeFor(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".avi") || strings.HasSuffix(lower, ".mp4") {
		return TypeVideoAVI
	}
	return TypeImagePNG
}
