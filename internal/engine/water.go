package engine

import (
	"context"

	"github.com/roach88/garden/internal/garden"
)

// ReasonInsufficientSunlight is reported when a debit is refused.
const ReasonInsufficientSunlight = "insufficient_sunlight"

// WaterResult reports the outcome of a Water call.
type WaterResult struct {
	// Applied is false when the balance could not cover the cost; nothing
	// changed in that case.
	Applied bool
	Reason  string

	Plant       garden.PlantInstance
	Transition  garden.Transition
	Celebration string // non-empty only when the plant advanced a stage
	Sunlight    int
}

// Water spends WaterCost sunlight to add WaterGrowth growth points to the
// plant, evaluating at most one stage transition. The debit and the growth
// commit together.
func (e *Engine) Water(ctx context.Context, plantID string) (WaterResult, error) {
	var res WaterResult
	err := e.submit(ctx, "water", func(next *garden.Snapshot) (bool, error) {
		p, ok := next.Stats.Plant(plantID)
		if !ok {
			return false, NewPlantNotFoundError(plantID)
		}
		if !next.Stats.Debit(garden.WaterCost) {
			res = WaterResult{
				Reason:   ReasonInsufficientSunlight,
				Plant:    clonePlant(*p),
				Sunlight: next.Stats.Sunlight,
			}
			return false, nil
		}

		t := p.Grow(garden.WaterGrowth)
		res = WaterResult{
			Applied:    true,
			Plant:      clonePlant(*p),
			Transition: t,
			Sunlight:   next.Stats.Sunlight,
		}
		if t.Advanced {
			res.Celebration = garden.CelebrationMessage(p.Name, t.To)
		}
		return true, nil
	})
	if err != nil {
		return WaterResult{}, err
	}

	if res.Applied {
		ev := e.log.Info().Str("plant", plantID).Int("growth_points", res.Plant.GrowthPoints).Int("sunlight", res.Sunlight)
		if res.Transition.Advanced {
			ev = ev.Str("stage", string(res.Transition.To))
		}
		ev.Msg("plant watered")
	}
	return res, nil
}

// clonePlant detaches a plant from the snapshot it was read from.
func clonePlant(p garden.PlantInstance) garden.PlantInstance {
	p.FlowerLanguages = p.FlowerLanguages.Clone()
	return p
}
