package generator

import "context"

// Offline never reaches a model. Every call fails with ErrOffline so the
// caller's fallback content is used.
type Offline struct{}

func (Offline) KnowledgeCard(context.Context) (Card, error) {
	return Card{}, ErrOffline
}

func (Offline) FlowerLanguage(context.Context, string) (string, error) {
	return "", ErrOffline
}
