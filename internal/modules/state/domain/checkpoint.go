package domain

// Checkpoint is the persisted cursor record for a channel. A nil
// LastReadMessageID means no message has ever been processed, which
// serializes as an explicit JSON null.
type Checkpoint struct {
	LastReadMessageID *string `json:"last_read_message_id"`
	LastCheckTime     string  `json:"last_check_time"`
	LastMessageCount  int     `json:"last_message_count"`
	LastFilePath      string  `json:"last_file_path"`
}
