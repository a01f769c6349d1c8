package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultSystemPrompt = `You are Native, a business assistant for small teams.
Be concise and practical. Lead with the answer, then a few short bullets.`

const fallbackReply = "I apologize, but I couldn't generate a response."

// ErrEmptyMessage is returned when the request carries no user message.
var ErrEmptyMessage = errors.New("message is required")

// Message is one turn of prior conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat proxy input.
type Request struct {
	Message      string    `json:"message"`
	History      []Message `json:"history,omitempty"`
	SystemPrompt string    `json:"systemPrompt,omitempty"`
}

// Usage mirrors the provider's token accounting.
type Usage struct {
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
}

// Reply is the chat proxy output.
type Reply struct {
	Message string `json:"message"`
	Usage   Usage  `json:"usage"`
}

// UpstreamError carries the HTTP status the provider answered with.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openai: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Config selects the model and sampling parameters.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
	MaxRetries  int
}

// Client forwards chat turns to OpenAI.
type Client struct {
	client openai.Client
	cfg    Config
}

// New builds a client from cfg. The API key must be non-empty.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}

	return &Client{client: openai.NewClient(opts...), cfg: cfg}, nil
}

// Messages turns a request into the provider's message list. Only user and
// assistant history turns are forwarded.
func Messages(req Request) []openai.ChatCompletionMessageParamUnion {
	system := strings.TrimSpace(req.SystemPrompt)
	if system == "" {
		system = defaultSystemPrompt
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range req.History {
		switch m.Role {
		case "user":
			msgs = append(msgs, openai.UserMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}
	return append(msgs, openai.UserMessage(req.Message))
}

// Chat sends one request and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Messages:    Messages(req),
		MaxTokens:   openai.Int(c.cfg.MaxTokens),
		Temperature: openai.Float(c.cfg.Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{Status: apiErr.StatusCode, Err: err}
		}
		return nil, &UpstreamError{Status: http.StatusBadGateway, Err: err}
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(text) == "" {
		text = fallbackReply
	}

	return &Reply{
		Message: text,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
