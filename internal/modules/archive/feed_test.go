package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/storage"
)

type fakeStore struct {
	objects  map[string]string
	types    map[string]string
	failList bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]string), types: make(map[string]string)}
}

func (f *fakeStore) Upload(_ context.Context, path, content, contentType string) error {
	f.objects[path] = content
	f.types[path] = contentType
	return nil
}

func (f *fakeStore) Download(_ context.Context, path string) (string, error) {
	content, ok := f.objects[path]
	if !ok {
		return "", storage.ErrObjectNotFound
	}
	return content, nil
}

func (f *fakeStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.objects[path]
	return ok, nil
}

func (f *fakeStore) EnsureBucket(_ context.Context, _ string) error { return nil }

func (f *fakeStore) List(_ context.Context, prefix string, limit int) ([]string, error) {
	if f.failList {
		return nil, errors.New("list failed")
	}
	var paths []string
	for path := range f.objects {
		if strings.HasPrefix(path, prefix) && len(paths) < limit {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (f *fakeStore) Close() error { return nil }

func newTestPublisher(t *testing.T, store *fakeStore) *FeedPublisher {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	p := NewFeedPublisher(store, "test-bucket", loc)
	p.now = func() time.Time {
		return time.Date(2026, 8, 24, 12, 0, 0, 0, loc)
	}
	return p
}

func TestPublish_BuildsFeedFromArchives(t *testing.T) {
	store := newFakeStore()
	store.objects["Discord_Messages/unread_messages_123_2026-08-23_09-00-00.html"] = "<html></html>"
	store.objects["Discord_Messages/unread_messages_123_2026-08-24_10-00-00.html"] = "<html></html>"
	store.objects["_state/bot_state.json"] = "{}"

	publisher := newTestPublisher(t, store)
	if err := publisher.Publish(context.Background(), "123"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	rss, ok := store.objects[FeedObjectPath]
	if !ok {
		t.Fatal("feed was not uploaded")
	}
	if !strings.Contains(store.types[FeedObjectPath], "application/rss+xml") {
		t.Errorf("unexpected feed content type: %s", store.types[FeedObjectPath])
	}

	if !strings.Contains(rss, "unread_messages_123_2026-08-23_09-00-00.html") ||
		!strings.Contains(rss, "unread_messages_123_2026-08-24_10-00-00.html") {
		t.Error("feed should list every stored archive")
	}
	if strings.Contains(rss, "bot_state.json") {
		t.Error("feed must not list the checkpoint record")
	}
	if !strings.Contains(rss, "https://storage.googleapis.com/test-bucket/Discord_Messages/") {
		t.Error("feed items should link into the bucket")
	}
}

func TestPublish_NewestArchiveFirst(t *testing.T) {
	store := newFakeStore()
	store.objects["Discord_Messages/unread_messages_123_2026-08-23_09-00-00.html"] = ""
	store.objects["Discord_Messages/unread_messages_123_2026-08-24_10-00-00.html"] = ""

	publisher := newTestPublisher(t, store)
	if err := publisher.Publish(context.Background(), "123"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	rss := store.objects[FeedObjectPath]
	newer := strings.Index(rss, "2026-08-24_10-00-00")
	older := strings.Index(rss, "2026-08-23_09-00-00")
	if newer < 0 || older < 0 || newer > older {
		t.Error("newest archive should come first in the feed")
	}
}

func TestPublish_ListFailure(t *testing.T) {
	store := newFakeStore()
	store.failList = true

	publisher := newTestPublisher(t, store)
	if err := publisher.Publish(context.Background(), "123"); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestArchiveTime_RecoversRunTimestamp(t *testing.T) {
	publisher := newTestPublisher(t, newFakeStore())
	fallback := publisher.now()

	got := publisher.archiveTime("Discord_Messages/unread_messages_123_2026-08-24_10-00-00.html", fallback)
	if got.Format("2006-01-02 15:04:05") != "2026-08-24 10:00:00" {
		t.Errorf("unexpected recovered time: %v", got)
	}

	got = publisher.archiveTime("Discord_Messages/garbage.html", fallback)
	if !got.Equal(fallback) {
		t.Error("unparsable names should fall back to the current time")
	}
}
