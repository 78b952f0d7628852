package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/state/domain"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/storage"
)

// StateObjectPath is the fixed, well-known key of the checkpoint record.
const StateObjectPath = "_state/bot_state.json"

// ObjectStorage persists the checkpoint as a single JSON object in the
// object store. There is one writer per run; concurrent runs must be
// serialized by the invoking scheduler.
type ObjectStorage struct {
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewObjectStorage(store storage.ObjectStore) *ObjectStorage {
	return &ObjectStorage{
		store:  store,
		logger: slog.Default(),
	}
}

func (r *ObjectStorage) Load(ctx context.Context) *domain.Checkpoint {
	content, err := r.store.Download(ctx, StateObjectPath)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			r.logger.Warn("Failed to load state, starting from scratch", "error", err)
		}
		return &domain.Checkpoint{}
	}

	var checkpoint domain.Checkpoint
	if err := json.Unmarshal([]byte(content), &checkpoint); err != nil {
		r.logger.Warn("Stored state is unreadable, starting from scratch", "error", err)
		return &domain.Checkpoint{}
	}

	return &checkpoint
}

func (r *ObjectStorage) Save(ctx context.Context, checkpoint *domain.Checkpoint) error {
	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return oops.With("context", "marshaling checkpoint").Wrap(err)
	}

	if err := r.store.Upload(ctx, StateObjectPath, string(data), "application/json"); err != nil {
		return oops.With("path", StateObjectPath).Wrap(err)
	}

	return nil
}
