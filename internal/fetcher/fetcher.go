package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"photolock/api/internal/storage"
)

var ErrFetchFailed = errors.New("media fetch failed")

// MediaBlobs carries the two containers of one logical gallery object. For
// video the display bytes are the .mp4 and the verify bytes the sibling .avi
// the verification backend requires; for images both point at the same bytes.
type MediaBlobs struct {
	Display []byte
	Verify  []byte
}

// Fetcher resolves an object key to bytes through a signed URL. The cache is
// owned here rather than living as module state (the signed URLs are only
// ever minted on behalf of a fetch or a gallery listing).
type Fetcher struct {
	cache *storage.SignedURLCache
	http  *http.Client
}

func New(cache *storage.SignedURLCache) *Fetcher {
	return &Fetcher{
		cache: cache,
		http:  http.DefaultClient,
	}
}

// FetchObject downloads one object via its signed URL.
func (f *Fetcher) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	url, err := f.cache.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s/%s returned %s", ErrFetchFailed, bucket, key, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return data, nil
}

// MediaBlobs fetches the display and verification containers for a gallery
// key. Video issues two fetches (.mp4 and the .avi twin); images reuse a
// single fetch since both containers are identical.
func (f *Fetcher) MediaBlobs(ctx context.Context, bucket, key string) (MediaBlobs, error) {
	switch {
	case strings.HasSuffix(key, ".mp4"):
		display, err := f.FetchObject(ctx, bucket, key)
		if err != nil {
			return MediaBlobs{}, err
		}
		verifyKey := strings.TrimSuffix(key, ".mp4") + ".avi"
		verify, err := f.FetchObject(ctx, bucket, verifyKey)
		if err != nil {
			return MediaBlobs{}, err
		}
		return MediaBlobs{Display: display, Verify: verify}, nil

	case strings.HasSuffix(key, ".png"):
		display, err := f.FetchObject(ctx, bucket, key)
		if err != nil {
			return MediaBlobs{}, err
		}
		return MediaBlobs{Display: display, Verify: display}, nil
	}

	return MediaBlobs{}, fmt.Errorf("%w: unsupported gallery key %q", ErrFetchFailed, key)
}
