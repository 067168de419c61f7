package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter talks to any OpenAI-compatible Chat Completions endpoint.
type OpenAIAdapter struct {
	provider string
	model    string
	maxOut   int
	client   openai.Client
	log      *zerolog.Logger
}

type OpenAIOptions struct {
	Provider  string // metrics label; "openai" when empty
	APIKey    string
	BaseURL   string // empty = SDK default
	Model     string
	MaxOutput int
	Timeout   time.Duration
}

func NewOpenAIAdapter(opts OpenAIOptions, logger *zerolog.Logger) (*OpenAIAdapter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Provider == "" {
		opts.Provider = "openai"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
		// retries are owned by the prediction use case
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}
	return &OpenAIAdapter{
		provider: opts.Provider,
		model:    opts.Model,
		maxOut:   opts.MaxOutput,
		client:   openai.NewClient(reqOpts...),
		log:      logger,
	}, nil
}

func (o *OpenAIAdapter) Provider() string { return o.provider }

func (o *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{o.model}, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := o.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (o *OpenAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	model = modelOrDefault(model, o.model)
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	if o.maxOut > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.maxOut))
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.ObserveChatUsage(o.provider, model, 0, 0, latency, false)
		return "", adapter.Usage{}, fmt.Errorf("%s chat: %w", o.provider, err)
	}

	text := ""
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			text = c.Message.Content
			break
		}
	}
	if text == "" {
		metrics.ObserveChatUsage(o.provider, model, 0, 0, latency, false)
		return "", adapter.Usage{}, errors.New("no choice content")
	}

	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	if u.PromptTokens == 0 {
		// some compatible gateways omit usage
		u.PromptTokens = estimateTokens(model, messages)
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	metrics.ObserveChatUsage(o.provider, model, u.PromptTokens, u.CompletionTokens, latency, true)
	if o.log != nil {
		o.log.Debug().Str("provider", o.provider).Str("model", model).
			Int("tokens_in", u.PromptTokens).Int("tokens_out", u.CompletionTokens).
			Int64("latency_ms", latency).Msg("chat completion")
	}
	return text, u, nil
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch adapter.Role(strings.ToLower(string(m.Role))) {
		case adapter.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case adapter.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// estimateTokens counts prompt tokens locally. Unknown models use cl100k_base;
// if no encoding can be loaded it falls back to ~4 chars per token.
func estimateTokens(model string, msgs []adapter.Message) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	total := 0
	for _, m := range msgs {
		if err != nil {
			total += len(m.Content)/4 + 1
			continue
		}
		total += len(enc.Encode(m.Content, nil, nil)) + 4 // per-message framing
	}
	return total
}
