package errors

import "errors"

var (
	ErrMissingBotToken   = errors.New("DISCORD_BOT_TOKEN environment variable is required")
	ErrMissingChannelID  = errors.New("DISCORD_CHANNEL_ID environment variable is required")
	ErrMissingBucketName = errors.New("GCS_BUCKET_NAME environment variable is required")
	ErrInvalidTimezone   = errors.New("timezone is not a valid IANA time zone name")
)
