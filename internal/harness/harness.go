package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/garden/internal/engine"
	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/generator"
	"github.com/roach88/garden/internal/persist"
	"github.com/roach88/garden/internal/store"
	"github.com/roach88/garden/internal/testutil"
)

// Harness executes one scenario against a live engine.
type Harness struct {
	eng       *engine.Engine
	adapter   *persist.Adapter
	clock     *testutil.FixedClock
	seq       int64
	lastOffer *engine.CardOffer
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs over a fresh in-memory store. Deterministic helpers
// ensure reproducible results.
//
// Execution flow:
// 1. Seed the store from scenario.Initial
// 2. Start the engine with the scripted generator
// 3. Execute flow steps, checking expect clauses
// 4. Summarize the final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	kv := store.NewMemory()
	defer kv.Close()

	adapter, err := persist.New(kv, persist.WithLogger(zerolog.Nop()))
	if err != nil {
		return nil, fmt.Errorf("failed to create persistence adapter: %w", err)
	}
	if scenario.Initial != nil {
		if err := adapter.Save(ctx, initialSnapshot(scenario.Initial)); err != nil {
			return nil, fmt.Errorf("failed to seed initial state: %w", err)
		}
	}

	clock := testutil.NewFixedClock(testutil.GoldenTime)
	eng, err := engine.New(ctx, adapter, scriptedGenerator(scenario.Generator),
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSequentialIDs("id")),
		engine.WithLogger(zerolog.Nop()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()
	defer func() {
		eng.Stop()
		<-done
	}()

	h := &Harness{eng: eng, adapter: adapter, clock: clock}
	result := NewResult()

	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute flow: %w", err)
		}
	}

	result.State = summarize(eng.Snapshot(), eng.Revision())
	result.Persisted = h.persisted(ctx)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func initialSnapshot(init *InitialState) *garden.Snapshot {
	snap := garden.DefaultSnapshot()
	if init.Sunlight != nil {
		snap.Stats.Sunlight = *init.Sunlight
	}
	if init.Weather != "" {
		snap.Stats.Weather = garden.Weather(init.Weather)
	}
	snap.Stats.TotalKnowledgeLearned = init.TotalLearned
	return snap
}

func scriptedGenerator(script GeneratorScript) generator.Generator {
	gen := testutil.NewStubGenerator()
	for _, c := range script.Cards {
		gen.WithCards(testutil.StubCard{
			Card: generator.Card{Content: c.Content, Source: c.Source, Category: c.Category, Reward: c.Reward},
			Fail: c.Fail,
		})
	}
	for _, l := range script.Lines {
		gen.WithLines(testutil.StubLine{Text: l.Text, Fail: l.Fail})
	}
	return gen
}

// executeStep runs one flow step, once per repetition, recording a trace
// event for each run and checking the expect clause against it.
func (h *Harness) executeStep(ctx context.Context, index int, step FlowStep, result *Result) error {
	var advance time.Duration
	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", index, err)
		}
		advance = d
	}

	runs := max(step.Repeat, 1)
	for run := 1; run <= runs; run++ {
		if advance > 0 {
			h.clock.Advance(advance)
		}

		outcome, fields, err := h.perform(ctx, step)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", index, step.Action, err)
		}

		h.seq++
		ev := TraceEvent{
			Seq:      h.seq,
			Action:   step.Action,
			Args:     step.Args,
			Outcome:  outcome,
			Result:   fields,
			Revision: h.eng.Revision(),
		}
		result.AddTrace(ev)

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, ev) {
				result.AddError(fmt.Sprintf("flow[%d] run %d (%s): %s", index, run, step.Action, msg))
			}
		}
	}
	return nil
}

// perform runs one action and reports its outcome and result fields. Engine
// errors become the error outcome; anything else aborts the scenario.
func (h *Harness) perform(ctx context.Context, step FlowStep) (string, map[string]interface{}, error) {
	outcome, fields, err := h.dispatch(ctx, step)
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return OutcomeError, map[string]interface{}{"code": string(engErr.Code)}, nil
	}
	return outcome, fields, err
}

func (h *Harness) dispatch(ctx context.Context, step FlowStep) (string, map[string]interface{}, error) {
	switch step.Action {
	case ActionWater:
		res, err := h.eng.Water(ctx, argString(step.Args, "plant", garden.DefaultPlantID))
		if err != nil {
			return "", nil, err
		}
		if !res.Applied {
			return OutcomeInsufficient, map[string]interface{}{"sunlight": res.Sunlight}, nil
		}
		fields := map[string]interface{}{
			"plant":         res.Plant.ID,
			"growth_points": res.Plant.GrowthPoints,
			"stage":         string(res.Plant.Stage),
			"sunlight":      res.Sunlight,
		}
		if res.Celebration != "" {
			fields["celebration"] = res.Celebration
		}
		return OutcomeApplied, fields, nil

	case ActionBuy:
		t := garden.PlantType(argString(step.Args, "type", ""))
		res, err := h.eng.Acquire(ctx, t, argString(step.Args, "name", ""))
		if err != nil {
			return "", nil, err
		}
		if !res.Applied {
			return OutcomeInsufficient, map[string]interface{}{"sunlight": res.Sunlight}, nil
		}
		return OutcomeApplied, map[string]interface{}{
			"plant":        res.Plant.ID,
			"name":         res.Plant.Name,
			"type":         string(res.Plant.Type),
			"notification": res.Notification,
			"sunlight":     res.Sunlight,
		}, nil

	case ActionFetch:
		h.lastOffer = h.eng.FetchCard(ctx)
		return OutcomeApplied, cardFields(h.lastOffer), nil

	case ActionLearn:
		h.lastOffer = h.eng.FetchCard(ctx)
		return h.learn(ctx)

	case ActionRelearn:
		if h.lastOffer == nil {
			return "", nil, errors.New("no card fetched yet")
		}
		return h.learn(ctx)

	case ActionCheckIn:
		res, err := h.eng.CheckIn(ctx, argString(step.Args, "goal", ""), argString(step.Args, "learned", ""))
		if err != nil {
			return "", nil, err
		}
		return OutcomeApplied, map[string]interface{}{
			"flower_language": res.FlowerLanguage.Message,
			"fallback":        res.UsedFallback,
			"timestamp":       res.Record.Timestamp,
			"points":          res.Record.Points,
			"sunlight":        res.Sunlight,
		}, nil

	case ActionWeather:
		w := garden.Weather(argString(step.Args, "weather", ""))
		if err := h.eng.SetWeather(ctx, w); err != nil {
			return "", nil, err
		}
		return OutcomeApplied, map[string]interface{}{"weather": string(h.eng.Snapshot().Stats.Weather)}, nil
	}

	return "", nil, fmt.Errorf("unknown action %q", step.Action)
}

func (h *Harness) learn(ctx context.Context) (string, map[string]interface{}, error) {
	res, err := h.eng.Learn(ctx, h.lastOffer)
	if err != nil {
		return "", nil, err
	}
	if res.AlreadyLearned {
		return OutcomeAlreadyLearned, nil, nil
	}
	fields := cardFields(h.lastOffer)
	fields["sunlight"] = res.Sunlight
	fields["total_learned"] = res.TotalLearned
	return OutcomeApplied, fields, nil
}

func cardFields(offer *engine.CardOffer) map[string]interface{} {
	return map[string]interface{}{
		"content":  offer.Item.Content,
		"source":   offer.Item.Source,
		"category": offer.Item.Category,
		"reward":   offer.Item.Reward,
		"fallback": offer.UsedFallback,
	}
}

// persisted reports whether a fresh load from the store equals the engine's state.
func (h *Harness) persisted(ctx context.Context) bool {
	stored, status := h.adapter.Load(ctx)
	if status != persist.LoadOK {
		return false
	}
	return reflect.DeepEqual(stored, h.eng.Snapshot())
}

func summarize(snap *garden.Snapshot, revision int64) StateSummary {
	s := StateSummary{
		Sunlight:     snap.Stats.Sunlight,
		Weather:      string(snap.Stats.Weather),
		TotalLearned: snap.Stats.TotalKnowledgeLearned,
		PlantCount:   len(snap.Stats.OwnedPlants),
		Plants:       make([]PlantSummary, 0, len(snap.Stats.OwnedPlants)),
		CheckIns:     snap.CheckInHistory.Len(),
		Collection:   snap.Collection.Len(),
		Flowers:      len(snap.AllFlowerLanguages()),
		Revision:     revision,
	}
	for _, p := range snap.Stats.OwnedPlants {
		s.Plants = append(s.Plants, PlantSummary{
			ID:              p.ID,
			Name:            p.Name,
			Type:            string(p.Type),
			Stage:           string(p.Stage),
			GrowthPoints:    p.GrowthPoints,
			FlowerLanguages: p.FlowerLanguages.Len(),
		})
	}
	return s
}

// argString reads a scalar argument as a string.
func argString(args map[string]interface{}, key, def string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprint(v)
}
