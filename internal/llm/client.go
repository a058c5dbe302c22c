package llm

import (
	"context"
)

// LLMClient is the reasoning-model collaborator. It takes a prompt and
// returns free-form text; callers must defensively parse whatever comes
// back. Transport failures surface as errors.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
