package repository

import (
	"context"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/state/domain"
)

// Repository defines the interface for checkpoint persistence
type Repository interface {
	// Load returns the stored checkpoint, or the zero-value checkpoint
	// when none exists or the stored record is unreadable. It never
	// fails the run.
	Load(ctx context.Context) *domain.Checkpoint

	// Save overwrites the stored checkpoint.
	Save(ctx context.Context, checkpoint *domain.Checkpoint) error
}
