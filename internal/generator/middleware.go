package generator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/garden/internal/telemetry"
)

type timeoutGenerator struct {
	next Generator
	d    time.Duration
}

// WithTimeout bounds every call to g by d. This is the only timeout applied
// to generation; the engine itself never cancels an in-flight call.
func WithTimeout(g Generator, d time.Duration) Generator {
	if d <= 0 {
		return g
	}
	return &timeoutGenerator{next: g, d: d}
}

func (t *timeoutGenerator) KnowledgeCard(ctx context.Context) (Card, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.KnowledgeCard(ctx)
}

func (t *timeoutGenerator) FlowerLanguage(ctx context.Context, kp string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.FlowerLanguage(ctx, kp)
}

type tracedGenerator struct {
	next     Generator
	provider string
	tracer   trace.Tracer
}

// Traced wraps g so that each call runs in its own span.
func Traced(g Generator, provider string) Generator {
	return &tracedGenerator{next: g, provider: provider, tracer: telemetry.Tracer()}
}

func (t *tracedGenerator) KnowledgeCard(ctx context.Context) (Card, error) {
	ctx, span := t.tracer.Start(ctx, "generator.KnowledgeCard",
		trace.WithAttributes(attribute.String("generator.provider", t.provider)))
	defer span.End()

	card, err := t.next.KnowledgeCard(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return card, err
}

func (t *tracedGenerator) FlowerLanguage(ctx context.Context, kp string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "generator.FlowerLanguage",
		trace.WithAttributes(attribute.String("generator.provider", t.provider)))
	defer span.End()

	line, err := t.next.FlowerLanguage(ctx, kp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return line, err
}
