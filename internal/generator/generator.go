package generator

import (
	"context"

	"github.com/xaenox/vision-board/internal/models"
)

// Generator produces vision-board content from a text prompt. Calls
// are single attempts: no retry, no caching. Errors carry a message
// suitable for showing to the user.
type Generator interface {
	// GenerateGoalSuggestions returns zero or more goal suggestions
	// for a theme. An empty result is a valid success.
	GenerateGoalSuggestions(ctx context.Context, theme string) ([]models.GoalSuggestion, error)

	// GenerateVisionImage returns exactly one image reference (a data
	// URI) for a prompt.
	GenerateVisionImage(ctx context.Context, prompt string) (string, error)
}
