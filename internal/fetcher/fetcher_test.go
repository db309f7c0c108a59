package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolock/api/internal/storage"
)

// newTestFetcher signs URLs straight onto an httptest server that serves the
// given objects by key.
func newTestFetcher(t *testing.T, objects map[string][]byte) (*Fetcher, *int) {
	t.Helper()
	fetches := new(int)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*fetches++
		key := r.URL.Path[1:]
		data, ok := objects[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(server.Close)

	cache := storage.NewSignedURLCache(func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
		return server.URL + "/" + key, nil
	}, time.Minute)

	return New(cache), fetches
}

func TestMediaBlobsImageSingleFetch(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	f, fetches := newTestFetcher(t, map[string][]byte{"shot.png": png})

	blobs, err := f.MediaBlobs(context.Background(), "camera-7", "shot.png")
	require.NoError(t, err)

	assert.Equal(t, png, blobs.Display)
	assert.Equal(t, png, blobs.Verify)
	assert.Equal(t, 1, *fetches, "image display and verify share one fetch")
}

func TestMediaBlobsVideoTwoFetches(t *testing.T) {
	mp4 := []byte("mp4-bytes")
	avi := []byte("avi-bytes")
	f, fetches := newTestFetcher(t, map[string][]byte{
		"clip.mp4": mp4,
		"clip.avi": avi,
	})

	blobs, err := f.MediaBlobs(context.Background(), "camera-7", "clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, mp4, blobs.Display)
	assert.Equal(t, avi, blobs.Verify)
	assert.Equal(t, 2, *fetches)
}

func TestMediaBlobsMissingVerifyContainer(t *testing.T) {
	f, _ := newTestFetcher(t, map[string][]byte{"clip.mp4": []byte("mp4")})

	_, err := f.MediaBlobs(context.Background(), "camera-7", "clip.mp4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestMediaBlobsUnsupportedKey(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	_, err := f.MediaBlobs(context.Background(), "camera-7", "notes.txt")
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestFetchObjectHTTPError(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	_, err := f.FetchObject(context.Background(), "camera-7", "missing.png")
	assert.True(t, errors.Is(err, ErrFetchFailed))
}
