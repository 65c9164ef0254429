package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xaenox/vision-board/internal/board"
	"github.com/xaenox/vision-board/internal/generator"
	"github.com/xaenox/vision-board/internal/models"
	"go.uber.org/zap"
)

// Server exposes the board store and the content generator over an
// HTTP JSON API. The browser UI is the only intended client.
type Server struct {
	echo      *echo.Echo
	store     *board.Store
	generator generator.Generator
	logger    *zap.Logger

	// genBusy serializes generation: at most one request in flight,
	// exactly as the generator dialog allows.
	genBusy chan struct{}

	newID     func() string
	pickColor func() string
}

// CustomValidator wraps the validator for echo.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Option func(*Server)

// WithIDGenerator replaces the item id source, for deterministic tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Server) { s.newID = f }
}

// WithColorPicker replaces the note color source.
func WithColorPicker(f func() string) Option {
	return func(s *Server) { s.pickColor = f }
}

func New(store *board.Store, gen generator.Generator, logger *zap.Logger, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	s := &Server{
		echo:      e,
		store:     store,
		generator: gen,
		logger:    logger,
		genBusy:   make(chan struct{}, 1),
		newID:     func() string { return uuid.New().String() },
		pickColor: func() string {
			return models.NoteColors[rand.Intn(len(models.NoteColors))]
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.Info("HTTP request",
				zap.String("method", values.Method),
				zap.String("uri", values.URI),
				zap.Int("status", values.Status),
				zap.Duration("latency", values.Latency),
				zap.Error(values.Error))
			return nil
		},
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.Health)

	api := s.echo.Group("/api")
	api.GET("/boards", s.GetBoards)
	api.POST("/boards", s.CreateBoard)
	api.POST("/boards/:id/activate", s.ActivateBoard)
	api.DELETE("/boards/:id", s.DeleteBoard)
	api.POST("/items", s.AddItem)
	api.DELETE("/items/:id", s.DeleteItem)
	api.POST("/generate/goals", s.GenerateGoals)
	api.POST("/generate/image", s.GenerateImage)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(port int) error {
	if err := s.echo.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
