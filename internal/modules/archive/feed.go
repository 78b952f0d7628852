package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/storage"
)

// FeedObjectPath is where the archive index feed lives in the bucket.
const FeedObjectPath = Folder + "/archive_feed.xml"

// maxFeedItems caps how many archives the index feed describes.
const maxFeedItems = 100

// FeedPublisher maintains an RSS index of the archives stored in the
// bucket so new archives are subscribable. Publishing is best-effort:
// callers log failures and move on.
type FeedPublisher struct {
	store      storage.ObjectStore
	bucketName string
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

func NewFeedPublisher(store storage.ObjectStore, bucketName string, location *time.Location) *FeedPublisher {
	return &FeedPublisher{
		store:      store,
		bucketName: bucketName,
		location:   location,
		now:        time.Now,
		logger:     slog.Default(),
	}
}

// Publish regenerates the archive index feed from the current bucket
// listing and uploads it, overwriting the previous index.
func (p *FeedPublisher) Publish(ctx context.Context, channelID string) error {
	paths, err := p.store.List(ctx, Folder+"/", maxFeedItems)
	if err != nil {
		return oops.With("prefix", Folder).Wrap(err)
	}

	archives := lo.Filter(paths, func(path string, _ int) bool {
		return strings.HasSuffix(path, ".html")
	})
	// Newest archives first; paths embed the run timestamp so
	// lexicographic order matches chronological order per day.
	sort.Sort(sort.Reverse(sort.StringSlice(archives)))

	now := p.now().In(p.location)
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Discord Message Archives - Channel %s", channelID),
		Link:        &feeds.Link{Href: p.objectURL(FeedObjectPath)},
		Description: "Unread-message archives rendered from Discord",
		Created:     now,
	}

	feed.Items = lo.Map(archives, func(path string, _ int) *feeds.Item {
		return &feeds.Item{
			Title:   strings.TrimPrefix(path, Folder+"/"),
			Link:    &feeds.Link{Href: p.objectURL(path)},
			Created: p.archiveTime(path, now),
			Id:      path,
		}
	})

	rss, err := feed.ToRss()
	if err != nil {
		return oops.With("context", "rendering archive feed").Wrap(err)
	}

	if err := p.store.Upload(ctx, FeedObjectPath, rss, "application/rss+xml; charset=utf-8"); err != nil {
		return oops.With("path", FeedObjectPath).Wrap(err)
	}

	p.logger.Info("Published archive feed", "path", FeedObjectPath, "archives", len(archives))
	return nil
}

func (p *FeedPublisher) objectURL(path string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", p.bucketName, path)
}

// archiveTime recovers the run timestamp embedded in an archive path,
// falling back to now when the name does not parse.
func (p *FeedPublisher) archiveTime(path string, fallback time.Time) time.Time {
	name := strings.TrimSuffix(path, ".html")
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return fallback
	}

	stamp := parts[len(parts)-2] + "_" + parts[len(parts)-1]
	parsed, err := time.ParseInLocation("2006-01-02_15-04-05", stamp, p.location)
	if err != nil {
		return fallback
	}
	return parsed
}
