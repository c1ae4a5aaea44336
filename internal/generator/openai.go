package generator

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"
)

// OpenAI generates content through the Responses API. It also serves
// OpenAI-compatible endpoints when a base URL is given.
type OpenAI struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAI builds an OpenAI provider.
func NewOpenAI(apiKey, baseURL, model string, maxTokens int64, temperature float64, extra ...ooption.RequestOption) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("generator: missing openai api key")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("generator: missing model")
	}
	opts := []ooption.RequestOption{ooption.WithAPIKey(strings.TrimSpace(apiKey))}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, ooption.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	opts = append(opts, extra...)
	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       strings.TrimSpace(model),
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

func (p *OpenAI) params(prompt string) oresponses.ResponseNewParams {
	params := oresponses.ResponseNewParams{
		Model: oshared.ResponsesModel(p.model),
		Input: oresponses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	}
	if p.maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(p.maxTokens)
	}
	if p.temperature > 0 {
		params.Temperature = openai.Float(p.temperature)
	}
	return params
}

// KnowledgeCard asks for a JSON object card.
func (p *OpenAI) KnowledgeCard(ctx context.Context) (Card, error) {
	params := p.params(cardPrompt)
	params.Instructions = openai.String(cardInstructions)
	obj := oshared.NewResponseFormatJSONObjectParam()
	params.Text = oresponses.ResponseTextConfigParam{
		Format: oresponses.ResponseFormatTextConfigUnionParam{OfJSONObject: &obj},
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return Card{}, err
	}
	return parseCard(resp.OutputText())
}

// FlowerLanguage asks for one short line.
func (p *OpenAI) FlowerLanguage(ctx context.Context, knowledgePoint string) (string, error) {
	resp, err := p.client.Responses.New(ctx, p.params(flowerLanguagePrompt(knowledgePoint)))
	if err != nil {
		return "", err
	}
	return cleanLine(resp.OutputText()), nil
}
