package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/garden/internal/generator"
)

// ErrStub is what StubGenerator returns when told to fail.
var ErrStub = errors.New("stub generator failure")

// StubGenerator is a scripted generator.Generator.
//
// Responses are consumed in order; once a script is exhausted the last
// entry repeats. With Block set, every call waits for the context or for
// Release.
type StubGenerator struct {
	mu      sync.Mutex
	cards   []StubCard
	lines   []StubLine
	calls   []string
	block   chan struct{}
	entered chan struct{}
}

// StubCard is one scripted KnowledgeCard reply.
type StubCard struct {
	Card generator.Card
	Fail bool
}

// StubLine is one scripted FlowerLanguage reply.
type StubLine struct {
	Text string
	Fail bool
}

// NewStubGenerator creates a generator with no script. Unscripted calls fail.
func NewStubGenerator() *StubGenerator {
	return &StubGenerator{entered: make(chan struct{}, 64)}
}

// WithCards appends card replies.
func (g *StubGenerator) WithCards(cards ...StubCard) *StubGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cards = append(g.cards, cards...)
	return g
}

// WithLines appends flower-language replies.
func (g *StubGenerator) WithLines(lines ...StubLine) *StubGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lines = append(g.lines, lines...)
	return g
}

// Block makes every later call wait until Release or context cancellation.
func (g *StubGenerator) Block() *StubGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.block = make(chan struct{})
	return g
}

// Release unblocks waiting and future calls.
func (g *StubGenerator) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.block != nil {
		close(g.block)
		g.block = nil
	}
}

// Entered signals once per call as it starts.
func (g *StubGenerator) Entered() <-chan struct{} {
	return g.entered
}

// Calls returns the recorded calls, e.g. "card" or "line:光合作用".
func (g *StubGenerator) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

func (g *StubGenerator) begin(ctx context.Context, call string) error {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	block := g.block
	g.mu.Unlock()

	select {
	case g.entered <- struct{}{}:
	default:
	}

	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// KnowledgeCard implements generator.Generator.
func (g *StubGenerator) KnowledgeCard(ctx context.Context) (generator.Card, error) {
	if err := g.begin(ctx, "card"); err != nil {
		return generator.Card{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.cards) == 0 {
		return generator.Card{}, ErrStub
	}
	c := g.cards[0]
	if len(g.cards) > 1 {
		g.cards = g.cards[1:]
	}
	if c.Fail {
		return generator.Card{}, ErrStub
	}
	return c.Card, nil
}

// FlowerLanguage implements generator.Generator.
func (g *StubGenerator) FlowerLanguage(ctx context.Context, kp string) (string, error) {
	if err := g.begin(ctx, "line:"+kp); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.lines) == 0 {
		return "", ErrStub
	}
	l := g.lines[0]
	if len(g.lines) > 1 {
		g.lines = g.lines[1:]
	}
	if l.Fail {
		return "", ErrStub
	}
	return l.Text, nil
}

var _ generator.Generator = (*StubGenerator)(nil)
