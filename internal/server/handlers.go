package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xaenox/vision-board/internal/generator"
	"github.com/xaenox/vision-board/internal/models"
	"go.uber.org/zap"
)

// StoreView is the full state the UI renders from.
type StoreView struct {
	Boards        []models.Board `json:"boards"`
	ActiveBoardID string         `json:"activeBoardId"`
}

type CreateBoardRequest struct {
	Name string `json:"name" validate:"required"`
}

type AddItemRequest struct {
	Type    models.ItemType `json:"type" validate:"required,oneof=IMAGE NOTE TEXT"`
	Content string          `json:"content" validate:"required"`
	Title   string          `json:"title"`
}

type GenerateGoalsRequest struct {
	Theme string `json:"theme" validate:"required"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

func (s *Server) storeView() StoreView {
	return StoreView{
		Boards:        s.store.Boards(),
		ActiveBoardID: s.store.ActiveBoardID(),
	}
}

// GetBoards returns all boards and the active selection.
func (s *Server) GetBoards(c echo.Context) error {
	return c.JSON(http.StatusOK, s.storeView())
}

// CreateBoard creates a new board and makes it active.
func (s *Server) CreateBoard(c echo.Context) error {
	var req CreateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b := s.store.CreateBoard(c.Request().Context(), req.Name)
	return c.JSON(http.StatusCreated, b)
}

// ActivateBoard selects a board. Unknown ids are a silent no-op.
func (s *Server) ActivateBoard(c echo.Context) error {
	s.store.SelectBoard(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// DeleteBoard removes a board and returns the resulting store view,
// so the client sees the replacement board when the last one goes.
func (s *Server) DeleteBoard(c echo.Context) error {
	s.store.DeleteBoard(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, s.storeView())
}

// AddItem places a new item on the active board. The server assigns
// the id, and notes get a color from the palette.
func (s *Server) AddItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item := models.Item{
		ID:      s.newID(),
		Type:    req.Type,
		Content: req.Content,
		Title:   req.Title,
	}
	if req.Type == models.NoteItem {
		item.Color = s.pickColor()
	}

	s.store.AddItem(c.Request().Context(), item)
	return c.JSON(http.StatusCreated, item)
}

// DeleteItem removes an item from the active board. Unknown ids are a
// silent no-op.
func (s *Server) DeleteItem(c echo.Context) error {
	s.store.DeleteItem(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// GenerateGoals asks the generator for goal suggestions. Only one
// generation request may be in flight at a time.
func (s *Server) GenerateGoals(c echo.Context) error {
	var req GenerateGoalsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	release, err := s.acquireGenerator()
	if err != nil {
		return err
	}
	defer release()

	suggestions, err := s.generator.GenerateGoalSuggestions(c.Request().Context(), req.Theme)
	if err != nil {
		return s.generationError(err, "Could not generate goal suggestions")
	}
	return c.JSON(http.StatusOK, suggestions)
}

// GenerateImage asks the generator for a single vision image.
func (s *Server) GenerateImage(c echo.Context) error {
	var req GenerateImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	release, err := s.acquireGenerator()
	if err != nil {
		return err
	}
	defer release()

	url, err := s.generator.GenerateVisionImage(c.Request().Context(), req.Prompt)
	if err != nil {
		return s.generationError(err, "Could not generate image")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (s *Server) acquireGenerator() (func(), error) {
	select {
	case s.genBusy <- struct{}{}:
		return func() { <-s.genBusy }, nil
	default:
		return nil, echo.NewHTTPError(http.StatusConflict, "A generation request is already in progress")
	}
}

func (s *Server) generationError(err error, message string) error {
	if errors.Is(err, generator.ErrMissingAPIKey) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	s.logger.Error("Generation request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusBadGateway, message)
}
