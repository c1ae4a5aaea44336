package generator

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicDefaultMaxTokens = 512

// Anthropic generates content through the Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropic builds an Anthropic provider.
func NewAnthropic(apiKey, baseURL, model string, maxTokens int64, temperature float64, extra ...aoption.RequestOption) (*Anthropic, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("generator: missing anthropic api key")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("generator: missing model")
	}
	opts := []aoption.RequestOption{aoption.WithAPIKey(strings.TrimSpace(apiKey))}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, aoption.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	opts = append(opts, extra...)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	return &Anthropic{
		client:      anthropic.NewClient(opts...),
		model:       strings.TrimSpace(model),
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

func (p *Anthropic) complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// KnowledgeCard asks for a JSON object card.
func (p *Anthropic) KnowledgeCard(ctx context.Context) (Card, error) {
	text, err := p.complete(ctx, cardInstructions, cardPrompt)
	if err != nil {
		return Card{}, err
	}
	return parseCard(text)
}

// FlowerLanguage asks for one short line.
func (p *Anthropic) FlowerLanguage(ctx context.Context, knowledgePoint string) (string, error) {
	text, err := p.complete(ctx, "", flowerLanguagePrompt(knowledgePoint))
	if err != nil {
		return "", err
	}
	return cleanLine(text), nil
}
