package engine

import (
	"context"
	"fmt"

	"github.com/roach88/garden/internal/garden"
)

// AcquireResult reports the outcome of an Acquire call.
type AcquireResult struct {
	Applied      bool
	Reason       string
	Plant        garden.PlantInstance
	Notification string
	Sunlight     int
}

// Acquire spends AcquireCost sunlight on a new seed of species t. The plant
// is named "<name>-<n>" where n is the owned-plant count after the purchase;
// an empty name falls back to the shop name of the species.
func (e *Engine) Acquire(ctx context.Context, t garden.PlantType, name string) (AcquireResult, error) {
	if !garden.ValidPlantTypes[t] {
		return AcquireResult{}, NewUnknownPlantTypeError(string(t))
	}
	name = garden.NormalizeText(name)
	if name == "" {
		name = shopName(t)
	}

	var res AcquireResult
	err := e.submit(ctx, "acquire", func(next *garden.Snapshot) (bool, error) {
		if !next.Stats.Debit(garden.AcquireCost) {
			res = AcquireResult{Reason: ReasonInsufficientSunlight, Sunlight: next.Stats.Sunlight}
			return false, nil
		}

		// The id is minted inside the command so FixedGenerator tests see
		// ids consumed only by purchases that commit.
		id := plantIDPrefix + e.ids.Generate()
		p := garden.NewPlant(id, t, garden.AcquiredName(name, len(next.Stats.OwnedPlants)+1))
		next.Stats.AddPlant(p)

		res = AcquireResult{
			Applied:      true,
			Plant:        p,
			Notification: fmt.Sprintf("成功购买了 %s！🌿", name),
			Sunlight:     next.Stats.Sunlight,
		}
		return true, nil
	})
	if err != nil {
		return AcquireResult{}, err
	}

	if res.Applied {
		e.log.Info().Str("plant", res.Plant.ID).Str("type", string(t)).Int("sunlight", res.Sunlight).Msg("plant acquired")
	}
	return res, nil
}

func shopName(t garden.PlantType) string {
	if item, ok := garden.CatalogItem(t); ok {
		return item.Name
	}
	return garden.DefaultPlantName
}

// SetWeather changes the cosmetic weather.
func (e *Engine) SetWeather(ctx context.Context, w garden.Weather) error {
	if !garden.ValidWeathers[w] {
		return NewUnknownWeatherError(string(w))
	}
	return e.submit(ctx, "weather", func(next *garden.Snapshot) (bool, error) {
		if next.Stats.Weather == w {
			return false, nil
		}
		next.Stats.Weather = w
		return true, nil
	})
}
