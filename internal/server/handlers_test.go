package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/vision-board/internal/board"
	"github.com/xaenox/vision-board/internal/generator"
	"github.com/xaenox/vision-board/internal/models"
	"github.com/xaenox/vision-board/internal/storage"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	goals func(ctx context.Context, theme string) ([]models.GoalSuggestion, error)
	image func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeGenerator) GenerateGoalSuggestions(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
	return f.goals(ctx, theme)
}

func (f *fakeGenerator) GenerateVisionImage(ctx context.Context, prompt string) (string, error) {
	return f.image(ctx, prompt)
}

func newTestServer(t *testing.T, gen generator.Generator) (*Server, *board.Store) {
	t.Helper()

	counter := 0
	store := board.NewStore(storage.NewMemoryStorage(), zap.NewNop(),
		board.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("board-%d", counter)
		}))
	store.Initialize(context.Background())

	itemCounter := 0
	srv := New(store, gen, zap.NewNop(),
		WithIDGenerator(func() string {
			itemCounter++
			return fmt.Sprintf("item-%d", itemCounter)
		}),
		WithColorPicker(func() string { return "bg-yellow-100" }),
	)
	return srv, store
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetBoards(t *testing.T) {
	srv, store := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodGet, "/api/boards", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view StoreView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Boards, 1)
	assert.Equal(t, board.DefaultBoardName, view.Boards[0].Name)
	assert.Equal(t, store.ActiveBoardID(), view.ActiveBoardID)
}

func TestCreateBoard(t *testing.T) {
	srv, store := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodPost, "/api/boards", `{"name":"Goals"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Goals", created.Name)
	assert.Empty(t, created.Items)

	require.Len(t, store.Boards(), 2)
	assert.Equal(t, created.ID, store.ActiveBoardID())
}

func TestCreateBoardRequiresName(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodPost, "/api/boards", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateBoard(t *testing.T) {
	srv, store := newTestServer(t, &fakeGenerator{})
	first := store.ActiveBoardID()
	store.CreateBoard(context.Background(), "Second")

	rec := doJSON(srv, http.MethodPost, "/api/boards/"+first+"/activate", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, first, store.ActiveBoardID())

	// Unknown ids are a silent no-op
	rec = doJSON(srv, http.MethodPost, "/api/boards/missing/activate", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, first, store.ActiveBoardID())
}

func TestDeleteOnlyBoardReturnsReplacement(t *testing.T) {
	srv, store := newTestServer(t, &fakeGenerator{})
	only := store.ActiveBoardID()

	rec := doJSON(srv, http.MethodDelete, "/api/boards/"+only, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view StoreView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Boards, 1)
	assert.Equal(t, board.ReplacementBoardName, view.Boards[0].Name)
	assert.Equal(t, view.Boards[0].ID, view.ActiveBoardID)
}

func TestAddNoteItemGetsIDAndColor(t *testing.T) {
	srv, store := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodPost, "/api/items",
		`{"type":"NOTE","content":"Correr 10k","title":"Salud"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, models.NoteItem, item.Type)
	assert.Equal(t, "bg-yellow-100", item.Color)

	active, ok := store.ActiveBoard()
	require.True(t, ok)
	require.Len(t, active.Items, 1)
	assert.Equal(t, item, active.Items[0])
}

func TestAddImageItemHasNoColor(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodPost, "/api/items",
		`{"type":"IMAGE","content":"https://example.com/a.png","title":"A"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Empty(t, item.Color)
}

func TestAddItemRejectsUnknownType(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodPost, "/api/items", `{"type":"VIDEO","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteItem(t *testing.T) {
	srv, store := newTestServer(t, &fakeGenerator{})
	store.AddItem(context.Background(), models.Item{ID: "i1", Type: models.NoteItem, Content: "A"})

	rec := doJSON(srv, http.MethodDelete, "/api/items/i1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	active, _ := store.ActiveBoard()
	assert.Empty(t, active.Items)

	// Deleting again is a silent no-op
	rec = doJSON(srv, http.MethodDelete, "/api/items/i1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGenerateGoals(t *testing.T) {
	gen := &fakeGenerator{
		goals: func(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
			assert.Equal(t, "salud", theme)
			return []models.GoalSuggestion{{Category: "Salud", Goal: "Correr 10k"}}, nil
		},
	}
	srv, _ := newTestServer(t, gen)

	rec := doJSON(srv, http.MethodPost, "/api/generate/goals", `{"theme":"salud"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var suggestions []models.GoalSuggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Correr 10k", suggestions[0].Goal)
}

func TestGenerateGoalsEmptyResultIsSuccess(t *testing.T) {
	gen := &fakeGenerator{
		goals: func(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
			return []models.GoalSuggestion{}, nil
		},
	}
	srv, store := newTestServer(t, gen)

	rec := doJSON(srv, http.MethodPost, "/api/generate/goals", `{"theme":"salud"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// Nothing was added to the store
	active, _ := store.ActiveBoard()
	assert.Empty(t, active.Items)
}

func TestGenerateGoalsFailure(t *testing.T) {
	gen := &fakeGenerator{
		goals: func(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
			return nil, errors.New("upstream down")
		},
	}
	srv, _ := newTestServer(t, gen)

	rec := doJSON(srv, http.MethodPost, "/api/generate/goals", `{"theme":"salud"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerateMissingAPIKey(t *testing.T) {
	gen := &fakeGenerator{
		image: func(ctx context.Context, prompt string) (string, error) {
			return "", generator.ErrMissingAPIKey
		},
	}
	srv, _ := newTestServer(t, gen)

	rec := doJSON(srv, http.MethodPost, "/api/generate/image", `{"prompt":"montañas"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGenerateImage(t *testing.T) {
	gen := &fakeGenerator{
		image: func(ctx context.Context, prompt string) (string, error) {
			return "data:image/png;base64,aGVsbG8=", nil
		},
	}
	srv, _ := newTestServer(t, gen)

	rec := doJSON(srv, http.MethodPost, "/api/generate/image", `{"prompt":"montañas"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", resp["url"])
}

func TestGenerationIsSerialized(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{
		goals: func(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
			close(started)
			<-release
			return []models.GoalSuggestion{}, nil
		},
	}
	srv, _ := newTestServer(t, gen)

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- doJSON(srv, http.MethodPost, "/api/generate/goals", `{"theme":"uno"}`)
	}()
	<-started

	// Second request while the first is in flight
	rec := doJSON(srv, http.MethodPost, "/api/generate/goals", `{"theme":"dos"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)

	// The slot is free again afterwards
	gen.goals = func(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
		return []models.GoalSuggestion{}, nil
	}
	rec = doJSON(srv, http.MethodPost, "/api/generate/goals", `{"theme":"tres"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{})

	rec := doJSON(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
