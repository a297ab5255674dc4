package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

// OpenAIConfig configures the hosted chat completion backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient is optional; tests point it at httptest servers.
	HTTPClient *http.Client
}

// OpenAIGateway implements Completer with the OpenAI chat completions API.
type OpenAIGateway struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func NewOpenAIGateway(cfg OpenAIConfig, log *zap.Logger) *OpenAIGateway {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIGateway{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: timeout,
		log:     log.Named("llm"),
	}
}

func (g *OpenAIGateway) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	outbound := req.Outbound()
	messages := make([]openai.ChatCompletionMessage, 0, len(outbound))
	for _, m := range outbound {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	chatReq := openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		err = classify(err)
		g.log.Warn("chat completion failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
			zap.Bool("json", req.JSON),
		)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &GatewayError{Kind: ErrInvalidResponse, Err: errNoChoices}
	}
	g.log.Debug("chat completion",
		zap.String("model", g.model),
		zap.Int("messages", len(messages)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}
