package greeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/ratelimit"
)

// rateKey is the limiter bucket shared by all outbound model calls.
const rateKey = "anthropic"

// MessageCreator is the subset of the Anthropic client used here.
type MessageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicConfig configures the model-backed generator.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// Anthropic asks a Claude model for the three styles in one call.
type Anthropic struct {
	messages  MessageCreator
	model     string
	maxTokens int64
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
}

// NewAnthropic builds a generator talking to the Messages API.
func NewAnthropic(cfg AnthropicConfig, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Anthropic {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return NewAnthropicWithClient(&client.Messages, cfg, limiter, logger)
}

// NewAnthropicWithClient is NewAnthropic with an injected message client.
func NewAnthropicWithClient(messages MessageCreator, cfg AnthropicConfig, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Anthropic {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Anthropic{
		messages:  messages,
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   limiter,
		logger:    logger,
	}
}

type modelAnswer struct {
	Formal string `json:"formal"`
	Casual string `json:"casual"`
	Poetic string `json:"poetic"`
}

// Generate implements Generator.
func (a *Anthropic) Generate(ctx context.Context, req domain.GreetingRequest) ([]domain.GreetingVariation, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, rateKey); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	msg, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("messages api: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	raw, err := extractJSON(text.String())
	if err != nil {
		return nil, err
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}

	vars := []domain.GreetingVariation{
		{ID: string(domain.StyleFormal), Style: domain.StyleFormal, Text: strings.TrimSpace(answer.Formal)},
		{ID: string(domain.StyleCasual), Style: domain.StyleCasual, Text: strings.TrimSpace(answer.Casual)},
		{ID: string(domain.StylePoetic), Style: domain.StylePoetic, Text: strings.TrimSpace(answer.Poetic)},
	}
	if err := Validate(vars); err != nil {
		return nil, err
	}

	a.logger.Debug("greetings generated",
		slog.String("model", a.model),
		slog.String("occasion", string(req.Occasion)))

	return vars, nil
}

func buildPrompt(req domain.GreetingRequest) string {
	occasion := string(req.Occasion)
	if info, ok := catalog.OccasionByID(req.Occasion); ok {
		occasion = info.Title
	}
	if f, ok := catalog.FestivalByID(req.FestivalType); ok {
		occasion += " (" + f.Name + ")"
	}
	if w, ok := catalog.WeddingTypeByID(req.WeddingType); ok {
		occasion += " (" + w.Name + ")"
	}

	note := "none"
	if req.PersonalNote != "" {
		note = fmt.Sprintf("%q. Include it verbatim in every greeting.", req.PersonalNote)
	}

	return fmt.Sprintf(`Write three short celebration greetings for %s.

Occasion: %s
Personal note from the sender: %s

Styles:
- formal: respectful, warm, begins with "Dear %s,"
- casual: friendly and relaxed
- poetic: a short rhyming verse

Every greeting must mention %s by name and may use a fitting emoji or two.
Output ONLY a JSON object of the form {"formal": "...", "casual": "...", "poetic": "..."}, no markdown.`,
		req.RecipientName, occasion, note, req.RecipientName, req.RecipientName)
}

var errNoJSON = errors.New("no JSON object found in model answer")

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}
