package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Some providers/models reject large max-token values; instead of failing the
// whole request we walk down this ladder and keep the smallest working cap.
var fallbackCaps = []int{8192, 4096, 2048}

const lastResortCap = 2048

// Substring fallback for providers whose errors carry no structured code.
// Known smell: string matching is fragile, but it is the only signal some
// gateways give us.
var tokenLimitPhrases = []string{
	"maxoutputtokens",
	"max_completion_tokens",
	"max tokens",
	"output tokens",
	"token limit",
	"too large",
	"exceeds",
	"invalid argument",
}

type OpenAIClient struct {
	httpClient *http.Client
}

func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// credentials resolves the provider config fresh on every call so that key
// rotation in the environment is picked up without a restart.
func (c *OpenAIClient) credentials() (apiKey, model string, err error) {
	apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return "", "", &Error{
			Kind: KindUnavailable,
			Err:  errors.New("OPENAI_API_KEY not set"),
		}
	}

	model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = openai.GPT4oMini
	}

	return apiKey, model, nil
}

func (c *OpenAIClient) Ready() bool {
	_, _, err := c.credentials()
	return err == nil
}

func (c *OpenAIClient) Complete(
	ctx context.Context,
	messages []Message,
	maxTokens int,
) (string, error) {

	apiKey, model, err := c.credentials()
	if err != nil {
		return "", err
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = c.httpClient
	// Self-hosted gateways and tests point this at their own endpoint.
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	caps := fallbackCaps
	if maxTokens > 0 {
		caps = []int{maxTokens}
	}

	for _, tokenCap := range caps {
		reply, err := c.callOnce(ctx, client, model, messages, tokenCap)
		if err == nil {
			return reply, nil
		}
		if !isTokenLimitError(err) {
			log.Println("[ai] OpenAI error:", err)
			return "", &Error{Kind: KindProvider, Err: err}
		}
		log.Printf("[ai] cap %d rejected, trying smaller: %v", tokenCap, err)
	}

	// Last attempt (safe-ish default).
	reply, err := c.callOnce(ctx, client, model, messages, lastResortCap)
	if err != nil {
		log.Println("[ai] OpenAI error:", err)
		kind := KindProvider
		if isTokenLimitError(err) {
			kind = KindTokenLimit
		}
		return "", &Error{Kind: kind, Err: err}
	}
	return reply, nil
}

func (c *OpenAIClient) callOnce(
	ctx context.Context,
	client *openai.Client,
	model string,
	messages []Message,
	maxTokens int,
) (string, error) {

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: 0.2,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		log.Println("[ai] empty choices")
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// isTokenLimitError prefers the structured API error code and falls back to
// substring matching for providers that only return plain text.
func isTokenLimitError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
			return true
		}
	}

	msg := strings.ToLower(fmt.Sprint(err))
	for _, phrase := range tokenLimitPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
