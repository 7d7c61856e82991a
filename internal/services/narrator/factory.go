package narrator

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
)

// New creates the narrator selected by llm.default_provider
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.Narrator, error) {
	provider := config.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderClaude
	}

	logger.Debug().Str("provider", string(provider)).Msg("Creating narrator")

	switch provider {
	case common.LLMProviderClaude:
		return NewClaudeNarrator(&config.Claude, logger)
	case common.LLMProviderGemini:
		return NewGeminiNarrator(ctx, &config.Gemini, logger, "")
	default:
		return nil, fmt.Errorf("unsupported narration provider: %s", provider)
	}
}
