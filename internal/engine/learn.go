package engine

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/generator"
)

// CardOffer is a knowledge card shown to the user. It can be learned once.
type CardOffer struct {
	Item         garden.KnowledgeItem
	UsedFallback bool

	learned atomic.Bool
}

// Learned reports whether the offer has been accepted.
func (o *CardOffer) Learned() bool {
	return o.learned.Load()
}

// LearnResult reports the outcome of a Learn call.
type LearnResult struct {
	// AlreadyLearned is true when the offer was accepted before; nothing
	// changed in that case.
	AlreadyLearned bool
	Item           garden.KnowledgeItem
	Sunlight       int
	TotalLearned   int
}

// FetchCard asks the generator for a new card. Generation failures are
// absorbed: the fixed fallback card is offered instead.
func (e *Engine) FetchCard(ctx context.Context) *CardOffer {
	ctx, span := e.tracer.Start(ctx, "engine.FetchCard")
	defer span.End()

	card, err := e.gen.KnowledgeCard(ctx)
	usedFallback := false
	if err != nil {
		e.log.Warn().Err(err).Msg("knowledge card generation failed, using fallback")
		e.counters.GeneratorFallback.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		card = generator.FallbackCard()
		usedFallback = true
	}
	card = generator.NormalizeCard(card)

	now := e.clock.Now()
	span.SetAttributes(attribute.Bool("garden.fallback", usedFallback), attribute.Int("garden.reward", card.Reward))
	return &CardOffer{
		Item: garden.KnowledgeItem{
			ID:       strconv.FormatInt(now.UnixMilli(), 10),
			Content:  card.Content,
			Source:   card.Source,
			Category: card.Category,
			Reward:   card.Reward,
			Date:     now.Format(dateLayout),
		},
		UsedFallback: usedFallback,
	}
}

// Learn credits the offer's reward, counts it as learned, and adds it to the
// collection. Each offer is credited at most once; later calls report
// AlreadyLearned. A reward outside [MinCardReward, MaxCardReward] is
// credited and stored as DefaultCardReward, and the item id is moved past
// the newest collected card when the clock has not advanced.
func (e *Engine) Learn(ctx context.Context, offer *CardOffer) (LearnResult, error) {
	if offer == nil {
		return LearnResult{}, &Error{Code: ErrCodeInvalidOffer, Message: "nil card offer"}
	}
	if !offer.learned.CompareAndSwap(false, true) {
		return LearnResult{AlreadyLearned: true, Item: offer.Item}, nil
	}

	item := offer.Item
	item.Reward = garden.NormalizeReward(item.Reward)
	ms, err := strconv.ParseInt(item.ID, 10, 64)
	if err != nil {
		ms = e.clock.Now().UnixMilli()
	}
	if item.Date == "" {
		item.Date = e.clock.Now().Format(dateLayout)
	}

	var res LearnResult
	err = e.submit(ctx, "learn", func(next *garden.Snapshot) (bool, error) {
		newest := ""
		if last, ok := next.Collection.At(0); ok {
			newest = last.ID
		}
		item.ID = recordID(ms, newest)
		next.Stats.CreditLearned(item.Reward)
		next.Collection.Push(item)
		res = LearnResult{
			Item:         item,
			Sunlight:     next.Stats.Sunlight,
			TotalLearned: next.Stats.TotalKnowledgeLearned,
		}
		return true, nil
	})
	if errors.Is(err, ErrEngineStopped) {
		// Never applied, so the offer is still open.
		offer.learned.Store(false)
	}
	if err != nil {
		return LearnResult{}, err
	}

	e.counters.SunlightCredited.Add(ctx, int64(item.Reward))
	e.log.Info().Str("card", item.ID).Int("reward", item.Reward).Int("sunlight", res.Sunlight).Msg("card learned")
	return res, nil
}
