package engine

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/generator"
)

// CheckInNotification is shown once a check-in commits.
const CheckInNotification = "花语已生成，植物很高兴！🌸"

// CheckInResult reports a committed check-in.
type CheckInResult struct {
	Notification   string
	FlowerLanguage garden.FlowerLanguage
	Record         garden.CheckInRecord
	UsedFallback   bool
	Sunlight       int
}

type checkInOutcome struct {
	res CheckInResult
	err error
}

// CheckIn records a study session: it generates a flower-language line for
// knowledgePoint, credits CheckInReward sunlight, attaches the line to the
// first owned plant, and records goal in the check-in history.
//
// Both strings must be non-empty; callers validate that. Generation and
// commit run on a context detached from ctx. If ctx ends first CheckIn
// returns ctx.Err() and the check-in still completes in the background.
func (e *Engine) CheckIn(ctx context.Context, goal, knowledgePoint string) (CheckInResult, error) {
	goal = garden.NormalizeText(goal)
	knowledgePoint = garden.NormalizeText(knowledgePoint)

	out := make(chan checkInOutcome, 1)
	go func() {
		res, err := e.checkIn(context.WithoutCancel(ctx), goal, knowledgePoint)
		out <- checkInOutcome{res: res, err: err}
	}()

	select {
	case o := <-out:
		return o.res, o.err
	case <-ctx.Done():
		e.log.Debug().Str("goal", goal).Msg("check-in caller gone, finishing in background")
		return CheckInResult{}, ctx.Err()
	}
}

func (e *Engine) checkIn(ctx context.Context, goal, knowledgePoint string) (CheckInResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CheckIn")
	defer span.End()

	line, err := e.gen.FlowerLanguage(ctx, knowledgePoint)
	line = strings.TrimSpace(line)
	usedFallback := false
	if err != nil || line == "" {
		if err != nil {
			e.log.Warn().Err(err).Msg("flower language generation failed, using fallback")
		} else {
			e.log.Warn().Msg("flower language generation returned nothing, using fallback")
		}
		e.counters.GeneratorFallback.Add(ctx, 1)
		line = generator.FallbackFlowerLanguage(knowledgePoint)
		usedFallback = true
	}
	span.SetAttributes(attribute.Bool("garden.fallback", usedFallback))

	now := e.clock.Now()
	fl := garden.FlowerLanguage{
		KnowledgePoint: knowledgePoint,
		Message:        line,
		Date:           now.Format(dateLayout),
	}
	rec := garden.CheckInRecord{
		Goal:      goal,
		Timestamp: now.Format(timestampLayout),
		Points:    garden.CheckInReward,
	}

	var res CheckInResult
	err = e.submit(ctx, "checkin", func(next *garden.Snapshot) (bool, error) {
		rec.ID = recordID(now.UnixMilli(), newestCheckInID(next))
		fl.ID = rec.ID + flowerIDSuffix
		next.Stats.Credit(garden.CheckInReward)
		if !next.Stats.AttachFlowerLanguage(fl) {
			e.log.Warn().Msg("no owned plant to receive the flower language")
		}
		next.CheckInHistory.Push(rec)
		res = CheckInResult{
			Notification:   CheckInNotification,
			FlowerLanguage: fl,
			Record:         rec,
			UsedFallback:   usedFallback,
			Sunlight:       next.Stats.Sunlight,
		}
		return true, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		e.log.Error().Err(err).Str("goal", goal).Msg("check-in not committed")
		return CheckInResult{}, err
	}

	e.counters.CheckIns.Add(ctx, 1)
	e.counters.SunlightCredited.Add(ctx, garden.CheckInReward)
	e.log.Info().Str("goal", goal).Str("knowledge_point", knowledgePoint).Int("sunlight", res.Sunlight).Msg("check-in committed")
	return res, nil
}

// newestCheckInID returns the larger of the latest check-in record id and
// the latest flower-language id, or "" when there are none.
func newestCheckInID(s *garden.Snapshot) string {
	var newest int64 = -1
	consider := func(id string) {
		if v, err := strconv.ParseInt(strings.TrimSuffix(id, flowerIDSuffix), 10, 64); err == nil && v > newest {
			newest = v
		}
	}
	if rec, ok := s.CheckInHistory.At(0); ok {
		consider(rec.ID)
	}
	for _, p := range s.Stats.OwnedPlants {
		if fl, ok := p.FlowerLanguages.At(0); ok {
			consider(fl.ID)
		}
	}
	if newest < 0 {
		return ""
	}
	return strconv.FormatInt(newest, 10)
}
