package repository

import (
	"context"
)

// GenerativeAIRepository sends free-form prompts to a generative text service.
type GenerativeAIRepository interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
