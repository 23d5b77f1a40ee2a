package llm_service

import (
	"context"
)

// LLMService produces a completion for a fully assembled prompt. The
// pipeline issues exactly one call per run.
type LLMService interface {
	CallLLM(ctx context.Context, prompt string) (string, error)
}
