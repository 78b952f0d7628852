package checker

import (
	"encoding/json"

	"github.com/samber/oops"
)

// RunResult summarizes one invocation. It is emitted as the final
// machine-parseable line of a successful run and never persisted.
type RunResult struct {
	ChannelID      string
	UnreadCount    int
	FileCreated    bool
	FilePath       string
	PreviousCursor *string
	NewCursor      *string
}

type summary struct {
	Message string        `json:"message"`
	Labels  summaryLabels `json:"labels"`
}

type summaryLabels struct {
	ChannelID     string  `json:"channel_id"`
	UnreadCount   int     `json:"unread_count"`
	FileCreated   bool    `json:"file_created"`
	LastReadID    *string `json:"last_read_id"`
	NewLastReadID *string `json:"new_last_read_id"`
}

// SummaryLine renders the run summary as a single JSON object suitable
// for structured log collection.
func (r *RunResult) SummaryLine() (string, error) {
	data, err := json.Marshal(summary{
		Message: "Message check completed",
		Labels: summaryLabels{
			ChannelID:     r.ChannelID,
			UnreadCount:   r.UnreadCount,
			FileCreated:   r.FileCreated,
			LastReadID:    r.PreviousCursor,
			NewLastReadID: r.NewCursor,
		},
	})
	if err != nil {
		return "", oops.With("context", "marshaling run summary").Wrap(err)
	}
	return string(data), nil
}
