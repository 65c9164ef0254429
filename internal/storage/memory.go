package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xaenox/vision-board/internal/models"
)

// MemoryStorage keeps the snapshot in process memory. Used for tests
// and ephemeral deployments.
type MemoryStorage struct {
	mu       sync.RWMutex
	snapshot []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(ctx context.Context) ([]models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, nil
	}

	var boards []models.Board
	if err := json.Unmarshal(s.snapshot, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (s *MemoryStorage) Save(ctx context.Context, boards []models.Board) error {
	data, err := json.Marshal(boards)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = data
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
