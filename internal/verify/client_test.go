package verify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyValid(t *testing.T) {
	media := []byte{0x89, 'P', 'N', 'G'}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, base64.StdEncoding.EncodeToString(media), req["image"])
		assert.Equal(t, TypeImagePNG, req["type"])

		json.NewEncoder(w).Encode(map[string]any{
			"result": "True",
			"metadata": map[string]string{
				"fingerprint":   "abc",
				"camera_number": "17",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	result := client.Verify(context.Background(), media, TypeImagePNG)

	assert.True(t, result.IsValid)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, "abc", result.Metadata.Fingerprint)
	assert.Equal(t, "17", result.Metadata.CameraNumber)
	assert.Empty(t, result.Error)
}

func TestVerifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "False"})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	result := client.Verify(context.Background(), []byte("data"), TypeImagePNG)

	assert.False(t, result.IsValid)
	assert.Nil(t, result.Metadata)
	assert.NotEmpty(t, result.Error)
}

func TestVerifyValidWithoutMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "True"})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	result := client.Verify(context.Background(), []byte("data"), TypeImagePNG)

	assert.False(t, result.IsValid, "a valid verdict requires the authenticity record")
	assert.Nil(t, result.Metadata)
	assert.NotEmpty(t, result.Error)
}

func TestVerifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model unavailable"})
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	result := client.Verify(context.Background(), []byte("data"), TypeVideoAVI)

	assert.False(t, result.IsValid)
	assert.Equal(t, "model unavailable", result.Error)
}

func TestVerifyTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := NewClient(server.URL, zerolog.Nop())
	result := client.Verify(context.Background(), []byte("data"), TypeImagePNG)

	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Error)
}

func TestDeclaredTypeFor(t *testing.T) {
	tests := map[string]string{
		"clip.mp4":   TypeVideoAVI,
		"clip.AVI":   TypeVideoAVI,
		"photo.png":  TypeImagePNG,
		"photo.jpeg": TypeImagePNG,
		"weird.bin":  TypeImagePNG,
	}
	for name, want := range tests {
		assert.Equal(t, want, DeclaredTypeFor(name), name)
	}
}
