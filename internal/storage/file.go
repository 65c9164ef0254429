package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xaenox/vision-board/internal/models"
)

// FileStorage persists the snapshot as a JSON file on disk, one file
// for the whole application. Writes go through a temp file and rename
// so a crash mid-write never leaves a truncated snapshot behind.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error creating snapshot directory: %w", err)
	}
	return &FileStorage{path: path}, nil
}

func (s *FileStorage) Load(ctx context.Context) ([]models.Board, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	var boards []models.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		return nil, fmt.Errorf("error decoding snapshot: %w", err)
	}
	return boards, nil
}

func (s *FileStorage) Save(ctx context.Context, boards []models.Board) error {
	data, err := json.Marshal(boards)
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("error writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("error replacing snapshot: %w", err)
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
