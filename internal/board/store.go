package board

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/vision-board/internal/models"
	"github.com/xaenox/vision-board/internal/storage"
	"go.uber.org/zap"
)

const (
	// DefaultBoardName is used for the board created on first launch.
	DefaultBoardName = "Mi Visión 2025"
	// ReplacementBoardName is used when the last remaining board is deleted.
	ReplacementBoardName = "Nuevo Tablero"
)

// Store is the single source of truth for all boards and the active
// selection. Boards are treated as immutable values: every mutation
// builds new Board/slice values instead of editing in place, and the
// full collection is written back to the Snapshotter before the
// operation returns.
//
// Operations taking unknown ids are silent no-ops. Operations never
// fail: a snapshot write error is logged and in-memory state is kept,
// matching the fire-and-forget write-back of the persistence layer.
type Store struct {
	mu       sync.RWMutex
	snapshot storage.Snapshotter
	logger   *zap.Logger

	boards   []models.Board
	activeID string

	newID func() string
	now   func() time.Time
}

type Option func(*Store)

// WithIDGenerator replaces the board id source, for deterministic tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// WithClock replaces the creation-timestamp source.
func WithClock(f func() time.Time) Option {
	return func(s *Store) { s.now = f }
}

func NewStore(snapshot storage.Snapshotter, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		snapshot: snapshot,
		logger:   logger,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted snapshot, or creates the default
// first-launch board when none exists. A snapshot that cannot be read
// is logged and treated as a first launch. The first board in the
// loaded sequence becomes active.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	boards, err := s.snapshot.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load board snapshot, starting fresh", zap.Error(err))
		boards = nil
	}

	if len(boards) == 0 {
		initial := s.newBoard(DefaultBoardName)
		s.boards = []models.Board{initial}
		s.activeID = initial.ID
		s.persist(ctx)
		return
	}

	s.boards = boards
	s.activeID = boards[0].ID
}

// CreateBoard appends a new empty board and makes it active.
func (s *Store) CreateBoard(ctx context.Context, name string) models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.newBoard(name)
	s.boards = append(s.copyBoards(), b)
	s.activeID = b.ID
	s.persist(ctx)
	return b
}

// SelectBoard makes the given board active. Unknown ids are ignored.
func (s *Store) SelectBoard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.boards {
		if b.ID == id {
			s.activeID = id
			return
		}
	}
}

// DeleteBoard removes a board. If the deleted board was active, the
// first remaining board becomes active. Deleting the only board
// creates a fresh replacement so the store never ends up empty.
func (s *Store) DeleteBoard(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := make([]models.Board, 0, len(s.boards))
	found := false
	for _, b := range s.boards {
		if b.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, b)
	}
	if !found {
		return
	}

	if len(remaining) == 0 {
		replacement := s.newBoard(ReplacementBoardName)
		s.boards = []models.Board{replacement}
		s.activeID = replacement.ID
		s.persist(ctx)
		return
	}

	s.boards = remaining
	if s.activeID == id {
		s.activeID = remaining[0].ID
	}
	s.persist(ctx)
}

// AddItem prepends a fully-formed item to the active board, so the
// newest item is always first. No-op when no board is active.
func (s *Store) AddItem(ctx context.Context, item models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndex()
	if idx < 0 {
		return
	}

	b := s.boards[idx]
	items := make([]models.Item, 0, len(b.Items)+1)
	items = append(items, item)
	items = append(items, b.Items...)
	b.Items = items

	boards := s.copyBoards()
	boards[idx] = b
	s.boards = boards
	s.persist(ctx)
}

// DeleteItem removes an item from the active board. Unknown ids and
// the no-active-board case are ignored.
func (s *Store) DeleteItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndex()
	if idx < 0 {
		return
	}

	b := s.boards[idx]
	items := make([]models.Item, 0, len(b.Items))
	found := false
	for _, it := range b.Items {
		if it.ID == itemID {
			found = true
			continue
		}
		items = append(items, it)
	}
	if !found {
		return
	}
	b.Items = items

	boards := s.copyBoards()
	boards[idx] = b
	s.boards = boards
	s.persist(ctx)
}

// Boards returns the current board sequence. The returned slice is a
// copy; the boards themselves are immutable values.
func (s *Store) Boards() []models.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyBoards()
}

// ActiveBoardID returns the id of the active board, or "" before
// initialization.
func (s *Store) ActiveBoardID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveBoard returns the active board, if any.
func (s *Store) ActiveBoard() (models.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.activeIndex(); idx >= 0 {
		return s.boards[idx], true
	}
	return models.Board{}, false
}

func (s *Store) newBoard(name string) models.Board {
	return models.Board{
		ID:        s.newID(),
		Name:      name,
		Items:     []models.Item{},
		CreatedAt: s.now().UnixMilli(),
	}
}

// activeIndex must be called with the lock held.
func (s *Store) activeIndex() int {
	for i, b := range s.boards {
		if b.ID == s.activeID {
			return i
		}
	}
	return -1
}

// copyBoards must be called with the lock held.
func (s *Store) copyBoards() []models.Board {
	out := make([]models.Board, len(s.boards))
	copy(out, s.boards)
	return out
}

// persist writes the full snapshot. Must be called with the lock held.
func (s *Store) persist(ctx context.Context) {
	if err := s.snapshot.Save(ctx, s.boards); err != nil {
		s.logger.Error("Failed to persist board snapshot",
			zap.Error(err),
			zap.Int("boards", len(s.boards)))
	}
}
