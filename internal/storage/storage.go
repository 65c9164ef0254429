package storage

import (
	"context"

	"github.com/xaenox/vision-board/internal/models"
)

// Snapshotter persists the full board collection as a single unit.
// Load returns nil (no error) when no snapshot has been written yet;
// the store treats that as a first launch.
type Snapshotter interface {
	Load(ctx context.Context) ([]models.Board, error)
	Save(ctx context.Context, boards []models.Board) error
	Close() error
}
