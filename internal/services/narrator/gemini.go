package narrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/finsight/internal/common"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiNarrator writes commentary with the Gemini API
type GeminiNarrator struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
	retry   *RetryConfig
}

func convertMessagesToGemini(messages []Message) ([]*genai.Content, string, error) {
	turns, system, err := splitSystem(messages)
	if err != nil {
		return nil, "", err
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	return contents, system, nil
}

// NewGeminiNarrator creates a Gemini narrator. The API key resolves from
// FINSIGHT_GEMINI_API_KEY or GOOGLE_API_KEY first, then gemini.api_key.
// baseURL overrides the API endpoint when non-empty.
func NewGeminiNarrator(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger, baseURL string) (*GeminiNarrator, error) {
	apiKey, err := common.ResolveAPIKey("gemini_api_key", config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Google API key is required for Gemini narration (set FINSIGHT_GEMINI_API_KEY or gemini.api_key): %w", err)
	}

	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	n := &GeminiNarrator{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: common.Duration(config.Timeout, 2*time.Minute),
		retry:   NewDefaultRetryConfig(),
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", n.timeout).
		Msg("Gemini narrator initialized")

	return n, nil
}

// Provider implements interfaces.Narrator
func (n *GeminiNarrator) Provider() string {
	return string(common.LLMProviderGemini)
}

// Narrate implements interfaces.Narrator
func (n *GeminiNarrator) Narrate(ctx context.Context, profile, report string) (string, error) {
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
		n.logger.Error().Err(err).Str("profile", profile).Msg("Gemini narration failed")
		return "", fmt.Errorf("gemini narration failed: %w", err)
	}

	n.logger.Debug().
		Str("profile", profile).
		Int("response_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini narration completed")

	return text, nil
}

func (n *GeminiNarrator) generate(ctx context.Context, messages []Message) (string, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(n.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := n.client.Models.GenerateContent(ctx, n.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	// first candidate with text wins
	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}
	return response.String(), nil
}
