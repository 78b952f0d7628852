// Package checker sequences one checkpoint-and-fetch cycle: load the
// cursor, fetch newer messages, render and upload an archive, advance
// the cursor. The checkpoint is a single-writer resource; concurrent
// runs against the same channel must be prevented by the invoking
// scheduler.
package checker

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/archive"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/discord"
	stateRepo "github.com/TheStevenMiller/Discord-Bot/internal/modules/state/repository"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/storage"
	"github.com/TheStevenMiller/Discord-Bot/internal/shared/config"
)

// fetchLimit is how many messages one run processes at most.
const fetchLimit = 100

type Service struct {
	cfg       *config.Config
	client    *discord.Client
	store     storage.ObjectStore
	state     stateRepo.Repository
	formatter *archive.Formatter
	feed      *archive.FeedPublisher
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func New(cfg *config.Config, client *discord.Client, store storage.ObjectStore, state stateRepo.Repository, formatter *archive.Formatter, feed *archive.FeedPublisher, location *time.Location) *Service {
	return &Service{
		cfg:       cfg,
		client:    client,
		store:     store,
		state:     state,
		formatter: formatter,
		feed:      feed,
		location:  location,
		now:       time.Now,
		logger:    slog.Default(),
	}
}

// Run performs a single check. The cursor is only advanced after the
// rendered archive has been uploaded, so a failed upload re-fetches the
// same messages on the next run instead of losing them. A checkpoint
// save failure after a successful upload is logged but not fatal; the
// cost is a possible duplicate archive on the next run.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	channelID := s.cfg.DiscordChannelID

	if err := s.store.EnsureBucket(ctx, s.cfg.GCSBucketLocation); err != nil {
		return nil, oops.With("bucket", s.cfg.GCSBucketName, "context", "ensuring bucket").Wrap(err)
	}

	checkpoint := s.state.Load(ctx)
	previousCursor := checkpoint.LastReadMessageID
	s.logger.Info("Checking channel for messages",
		"channel_id", channelID,
		"after", stringOrNone(previousCursor),
	)

	// Channel info is best-effort: without it the archive header just
	// shows Unknown.
	channel, err := s.client.FetchChannelInfo(ctx, channelID)
	if err != nil {
		s.logger.Warn("Failed to get channel info", "channel_id", channelID, "error", err)
		channel = nil
	} else {
		s.logger.Info("Connected to channel", "name", channel.Name)
	}

	messages, _, err := s.client.FetchMessages(ctx, channelID, previousCursor, fetchLimit)
	if err != nil {
		return nil, oops.With("channel_id", channelID, "context", "fetching messages").Wrap(err)
	}

	now := s.now().In(s.location)

	result := &RunResult{
		ChannelID:      channelID,
		UnreadCount:    len(messages),
		PreviousCursor: previousCursor,
		NewCursor:      previousCursor,
	}

	if len(messages) == 0 {
		s.logger.Info("No unread messages found")

		checkpoint.LastCheckTime = now.Format(time.RFC3339)
		checkpoint.LastMessageCount = 0
		if err := s.state.Save(ctx, checkpoint); err != nil {
			s.logger.Error("Failed to save state", "error", err)
		}

		return result, nil
	}

	s.logger.Info("Found unread messages", "count", len(messages))

	html := s.formatter.Format(messages, channel)
	filePath := archive.ArtifactPath(channelID, now)

	if err := s.store.Upload(ctx, filePath, html, "text/html; charset=utf-8"); err != nil {
		// Checkpoint deliberately not advanced: the next run re-fetches
		// the same messages.
		return nil, oops.With("path", filePath, "context", "uploading archive").Wrap(err)
	}
	s.logger.Info("Saved messages", "count", len(messages), "path", filePath)

	newCursor := messages[len(messages)-1].ID
	checkpoint.LastReadMessageID = &newCursor
	checkpoint.LastCheckTime = now.Format(time.RFC3339)
	checkpoint.LastMessageCount = len(messages)
	checkpoint.LastFilePath = filePath

	if err := s.state.Save(ctx, checkpoint); err != nil {
		s.logger.Error("Failed to save state after processing messages", "error", err)
	} else {
		s.logger.Info("Updated last read message ID", "last_read_message_id", newCursor)
	}

	if err := s.feed.Publish(ctx, channelID); err != nil {
		s.logger.Warn("Failed to publish archive feed", "error", err)
	}

	result.FileCreated = true
	result.FilePath = filePath
	result.NewCursor = &newCursor

	return result, nil
}

func stringOrNone(s *string) string {
	if s == nil {
		return "<none>"
	}
	return *s
}
