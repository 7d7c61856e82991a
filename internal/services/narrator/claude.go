package narrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
)

const defaultClaudeModel = "claude-sonnet-4-5"

// ClaudeNarrator writes commentary with the Anthropic Messages API
type ClaudeNarrator struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
	retry     *RetryConfig
}

func convertMessagesToClaude(messages []Message) ([]anthropic.MessageParam, string, error) {
	turns, system, err := splitSystem(messages)
	if err != nil {
		return nil, "", err
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		if msg.Role == "assistant" {
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		claudeMessages = append(claudeMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}
	return claudeMessages, system, nil
}

// NewClaudeNarrator creates a Claude narrator. The API key resolves from
// ANTHROPIC_API_KEY first, then claude.api_key.
func NewClaudeNarrator(config *common.ClaudeConfig, logger arbor.ILogger, opts ...option.RequestOption) (*ClaudeNarrator, error) {
	apiKey, err := common.ResolveAPIKey("anthropic_api_key", config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API key is required for Claude narration (set ANTHROPIC_API_KEY or claude.api_key): %w", err)
	}

	if config.Model == "" {
		config.Model = defaultClaudeModel
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	// Retries are handled by RetryConfig
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)

	n := &ClaudeNarrator{
		config:    config,
		logger:    logger,
		client:    anthropic.NewClient(opts...),
		timeout:   common.Duration(config.Timeout, 2*time.Minute),
		maxTokens: maxTokens,
		retry:     NewDefaultRetryConfig(),
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", n.timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude narrator initialized")

	return n, nil
}

// Provider implements interfaces.Narrator
func (n *ClaudeNarrator) Provider() string {
	return string(common.LLMProviderClaude)
}

// Narrate implements interfaces.Narrator
func (n *ClaudeNarrator) Narrate(ctx context.Context, profile, report string) (string, error) {
	messages, err := BuildMessages(profile, report)
	if err != nil {
		return "", err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	startTime := time.Now()
	var text string
	err = n.retry.do(timeoutCtx, n.logger, n.Provider(), func() error {
		var callErr error
		text, callErr = n.generate(timeoutCtx, messages)
		return callErr
	})
	if err != nil {
		n.logger.Error().Err(err).Str("profile", profile).Msg("Claude narration failed")
		return "", fmt.Errorf("claude narration failed: %w", err)
	}

	n.logger.Debug().
		Str("profile", profile).
		Int("response_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude narration completed")

	return text, nil
}

func (n *ClaudeNarrator) generate(ctx context.Context, messages []Message) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(n.config.Model),
		MaxTokens: int64(n.maxTokens),
		Messages:  claudeMessages,
	}
	if n.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(n.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := n.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}
	return response.String(), nil
}
