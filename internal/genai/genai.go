// Package genai generates nickname candidates through OpenAI-compatible chat completion APIs.

package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/PlayaBooth/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider names the backend behind the OpenAI-compatible API.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderClaude Provider = "claude"
)

// Provider defaults.
const (
	DefaultOpenAIModel   = "gpt-5.2"
	DefaultOllamaModel   = "llama3.2"
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
	DefaultClaudeModel   = "claude-opus-4-6"
	DefaultClaudeBaseURL = "https://api.anthropic.com/v1/"
	// ollama ignores the key but the API requires one
	ollamaAPIKey = "ollama"
	// claude requires max_tokens on every request
	claudeMaxTokens = 1024
)

var (
	// ErrGenerationFailed wraps every failure returned by Generate.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrMissingAPIKey is returned by NewClient when the provider needs a key and none was given.
	ErrMissingAPIKey = errors.New("API key not set")
	// ErrNoChoicesReturned is returned when the API responds without any choices.
	ErrNoChoicesReturned = errors.New("no choices returned")
	// ErrUnknownProvider is returned by NewClient for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ParseProvider maps a provider name to a Provider, defaulting to openai for an empty name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return ProviderOpenAI, nil
	case ProviderOpenAI, ProviderOllama, ProviderClaude:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChatService adapts the SDK completion service to chatService.
type openaiChatService struct {
	svc *openai.ChatCompletionService
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.svc.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration for the generation client.
type Opts struct {
	Provider  Provider
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
	Timeout   time.Duration
	DebugMode bool
	StateDir  string
}

// Option modifies Opts.
type Option func(*Opts)

// WithProvider selects the backend.
func WithProvider(p Provider) Option {
	return func(o *Opts) {
		o.Provider = p
	}
}

// WithAPIKey overrides the API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = model
	}
}

// WithBaseURL overrides the provider's API endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) {
		o.BaseURL = url
	}
}

// WithMaxTokens caps the completion length. Zero leaves it to the provider.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) {
		o.MaxTokens = n
	}
}

// WithTimeout sets a per-request timeout on top of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = d
	}
}

// WithDebugMode writes every request and response as JSON under stateDir/debug.
func WithDebugMode(enabled bool, stateDir string) Option {
	return func(o *Opts) {
		o.DebugMode = enabled
		o.StateDir = stateDir
	}
}

// Client wraps the chat completion service for generating nicknames.
type Client struct {
	chat      chatService
	provider  Provider
	model     string
	maxTokens int64
	timeout   time.Duration
	debugMode bool
	stateDir  string
}

// NewClient initializes a generation client for the configured provider.
// openai and claude require an API key; ollama does not.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = DefaultOpenAIModel
		}
	case ProviderOllama:
		if cfg.Model == "" {
			cfg.Model = DefaultOllamaModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaBaseURL
		}
		if cfg.APIKey == "" {
			cfg.APIKey = ollamaAPIKey
		}
	case ProviderClaude:
		if cfg.Model == "" {
			cfg.Model = DefaultClaudeModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultClaudeBaseURL
		}
		if cfg.MaxTokens == 0 {
			cfg.MaxTokens = claudeMaxTokens
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.APIKey == "" {
		slog.Warn("genai.NewClient: API key not set", "provider", cfg.Provider)
		return nil, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, cfg.Provider)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	cli := openai.NewClient(reqOpts...)

	slog.Info("genai.NewClient: client initialized", "provider", cfg.Provider, "model", cfg.Model, "base_url", cfg.BaseURL, "debug", cfg.DebugMode)
	return &Client{
		chat:      &openaiChatService{svc: &cli.Chat.Completions},
		provider:  cfg.Provider,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		debugMode: cfg.DebugMode,
		stateDir:  cfg.StateDir,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Provider returns the configured backend.
func (c *Client) Provider() Provider {
	return c.provider
}

// Generate sends messages to the provider and returns the raw response text.
// It does not retry; every error wraps ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, messages []models.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toParams(messages),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(c.maxTokens)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slog.Debug("Client.Generate: sending request", "provider", c.provider, "model", c.model, "messages", len(messages))
	start := time.Now()
	resp, err := c.chat.Create(ctx, params)
	c.writeDebugLog("Generate", params, resp, err)
	if err != nil {
		slog.Error("Client.Generate: API call failed", "provider", c.provider, "model", c.model, "error", err)
		return "", fmt.Errorf("%w: %s API error: %w", ErrGenerationFailed, c.provider, err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("Client.Generate: no choices returned", "provider", c.provider, "model", c.model)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrNoChoicesReturned)
	}

	content := resp.Choices[0].Message.Content
	slog.Info("Client.Generate: response received", "provider", c.provider, "model", c.model, "length", len(content), "elapsed", time.Since(start))
	return content, nil
}

// toParams converts booth messages to SDK message params.
func toParams(messages []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
