package gallery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolock/api/internal/models"
)

type fakeLister struct {
	mu   sync.Mutex
	refs []models.MediaReference
}

func (f *fakeLister) ListMedia(ctx context.Context, bucket string) ([]models.MediaReference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.MediaReference, len(f.refs))
	copy(out, f.refs)
	return out, nil
}

func (f *fakeLister) set(refs []models.MediaReference) {
	f.mu.Lock()
	f.refs = refs
	f.mu.Unlock()
}

type fakeSigner struct{}

func (fakeSigner) Get(ctx context.Context, bucket, key string) (string, error) {
	return "https://signed.example/" + bucket + "/" + key, nil
}

func TestListSignsEveryItem(t *testing.T) {
	lister := &fakeLister{refs: []models.MediaReference{
		{Key: "b.mp4", IsVideo: true},
		{Key: "a.png"},
	}}
	svc := NewService(lister, fakeSigner{}, time.Minute, zerolog.Nop())

	items, err := svc.List(context.Background(), "camera-7")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "b.mp4", items[0].Key, "listing order preserved")
	assert.True(t, items[0].IsVideo)
	assert.Equal(t, "https://signed.example/camera-7/b.mp4", items[0].MediaURL)
	assert.False(t, items[1].IsVideo)
}

func TestSubscribeDeliversOnChange(t *testing.T) {
	lister := &fakeLister{refs: []models.MediaReference{{Key: "a.png"}}}
	svc := NewService(lister, fakeSigner{}, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := svc.Subscribe(ctx, "camera-7")

	first := <-updates
	require.Len(t, first, 1)

	lister.set([]models.MediaReference{{Key: "b.mp4", IsVideo: true}, {Key: "a.png"}})

	select {
	case second := <-updates:
		require.Len(t, second, 2)
		assert.Equal(t, "b.mp4", second[0].Key)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after listing changed")
	}
}

func TestSubscribeStopsOnCancel(t *testing.T) {
	lister := &fakeLister{refs: []models.MediaReference{{Key: "a.png"}}}
	svc := NewService(lister, fakeSigner{}, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	updates := svc.Subscribe(ctx, "camera-7")

	<-updates
	cancel()

	select {
	case _, open := <-updates:
		assert.False(t, open, "channel closes when the subscriber goes away")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
