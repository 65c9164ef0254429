package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/vision-board/internal/models"
	"go.uber.org/zap"
)

// ErrMissingAPIKey is returned on the first generation attempt when no
// API key was configured. Startup itself does not require a key.
var ErrMissingAPIKey = errors.New("generator: API key is missing, set OPENAI_API_KEY")

type OpenAIGenerator struct {
	client      *openai.Client
	chatModel   string
	imageModel  string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIGenerator(apiKey, chatModel, imageModel string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIGenerator {
	g := &OpenAIGenerator{
		chatModel:   chatModel,
		imageModel:  imageModel,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

func (g *OpenAIGenerator) GenerateGoalSuggestions(ctx context.Context, theme string) ([]models.GoalSuggestion, error) {
	if g.client == nil {
		return nil, ErrMissingAPIKey
	}

	prompt := fmt.Sprintf(`Generate 5 specific, inspiring, and actionable vision board goals or affirmations for the following theme: "%s".

Return them as a JSON array with this structure, and nothing else:
[
    {"category": "category_name", "goal": "goal_text"},
    ...
]`, theme)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: float32(g.temperature),
		},
	)
	if err != nil {
		g.logger.Error("Failed to get goal suggestions", zap.Error(err))
		return nil, fmt.Errorf("error generating goal suggestions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return []models.GoalSuggestion{}, nil
	}

	suggestions, err := parseGoalSuggestions(resp.Choices[0].Message.Content)
	if err != nil {
		g.logger.Error("Failed to parse goal suggestions",
			zap.Error(err),
			zap.String("response", resp.Choices[0].Message.Content))
		return nil, fmt.Errorf("error parsing goal suggestions: %w", err)
	}
	return suggestions, nil
}

func (g *OpenAIGenerator) GenerateVisionImage(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	fullPrompt := fmt.Sprintf(
		"A high quality, artistic, inspiring image for a vision board about: %s. Photorealistic, bright, aesthetic, 4k.",
		prompt)

	resp, err := g.client.CreateImage(
		ctx,
		openai.ImageRequest{
			Model:          g.imageModel,
			Prompt:         fullPrompt,
			N:              1,
			Size:           openai.CreateImageSize1024x1024,
			ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		},
	)
	if err != nil {
		g.logger.Error("Failed to generate image", zap.Error(err))
		return "", fmt.Errorf("error generating image: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", errors.New("no image data returned from API")
	}

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

// parseGoalSuggestions decodes the model's JSON array, tolerating the
// markdown code fences some models wrap JSON in. An empty or
// whitespace-only response decodes to an empty list.
func parseGoalSuggestions(response string) ([]models.GoalSuggestion, error) {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return []models.GoalSuggestion{}, nil
	}

	var suggestions []models.GoalSuggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []models.GoalSuggestion{}
	}
	return suggestions, nil
}
