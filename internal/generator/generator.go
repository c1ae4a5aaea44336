// Package generator is the AI collaborator boundary. Providers produce
// knowledge cards and flower-language lines; callers substitute the fixed
// fallback content whenever a provider fails.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/garden/internal/garden"
)

// ErrOffline is returned by the offline provider for every request.
var ErrOffline = errors.New("generator: offline")

// Generator produces text for the garden. Implementations are called
// outside the engine's writer loop and may block.
type Generator interface {
	// KnowledgeCard returns the raw fields of a new card. Callers normalize it.
	KnowledgeCard(ctx context.Context) (Card, error)

	// FlowerLanguage returns one short line celebrating knowledgePoint.
	FlowerLanguage(ctx context.Context, knowledgePoint string) (string, error)
}

// Card is the generated part of a knowledge card.
type Card struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Reward   int    `json:"reward"`
}

// Defaults for blank card fields.
const (
	DefaultContent  = "大自然是最好的老师。"
	DefaultSource   = "生活智慧"
	DefaultCategory = "治愈"
)

// FallbackCard is offered when the provider cannot produce a card.
func FallbackCard() Card {
	return Card{
		Content:  "虽然暂时连接不上知识的海洋，但你的心依然在成长。",
		Source:   "系统提示",
		Category: "提示",
		Reward:   garden.MinCardReward,
	}
}

// FallbackFlowerLanguage is used when the provider cannot produce a line.
func FallbackFlowerLanguage(knowledgePoint string) string {
	return fmt.Sprintf("你学会了【%s】，你的植物正在静静地吸收这份养分。", knowledgePoint)
}

// NormalizeCard fills blank fields with defaults and replaces a reward
// outside [MinCardReward, MaxCardReward] with DefaultCardReward.
func NormalizeCard(c Card) Card {
	c.Content = strings.TrimSpace(c.Content)
	c.Source = strings.TrimSpace(c.Source)
	c.Category = strings.TrimSpace(c.Category)
	if c.Content == "" {
		c.Content = DefaultContent
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	c.Reward = garden.NormalizeReward(c.Reward)
	return c
}

const cardPrompt = "请生成一条适合在'知识花园'应用中展示的学习卡片。" +
	"内容应当是关于自然、心理学、历史、有趣冷知识或生活智慧的。" +
	"要求：温暖、治愈、具有启发性。语言为中文。"

const cardInstructions = `只输出一个 JSON 对象，字段如下：
{"content": "知识内容", "source": "来源或分类", "category": "标签", "reward": 5到15之间的整数，表示赋予的阳光值}`

func flowerLanguagePrompt(knowledgePoint string) string {
	return fmt.Sprintf(`用户今天学习了：'%[1]s'。请为他的虚拟植物生成一句诗意、治愈的“花语”。
要求：
1. 必须包含格式：“你学会了【%[1]s】，你的植物【比喻或拟人化的成长描述】。”
2. 语言风格：治愈、温暖、富有想象力。
3. 长度控制在30字以内。`, knowledgePoint)
}

// rawCard tolerates models that emit reward as a float or a string.
type rawCard struct {
	Content  string          `json:"content"`
	Source   string          `json:"source"`
	Category string          `json:"category"`
	Reward   json.RawMessage `json:"reward"`
}

// parseCard extracts a Card from model output. Markdown code fences around
// the JSON object are stripped.
func parseCard(text string) (Card, error) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}
	var raw rawCard
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Card{}, fmt.Errorf("generator: card is not json: %w", err)
	}
	return Card{
		Content:  raw.Content,
		Source:   raw.Source,
		Category: raw.Category,
		Reward:   parseReward(raw.Reward),
	}, nil
}

func parseReward(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Round(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var n float64
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &n); err == nil {
			return int(math.Round(n))
		}
	}
	return 0
}

// cleanLine trims a generated flower-language line and strips wrapping quotes.
func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"“”")
	return strings.TrimSpace(s)
}
