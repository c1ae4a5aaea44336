package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/garden/internal/garden"
)

// WaterView reports a successful watering.
type WaterView struct {
	PlantID      string       `json:"plant_id"`
	Name         string       `json:"name"`
	GrowthPoints int          `json:"growth_points"`
	Stage        garden.Stage `json:"stage"`
	Advanced     bool         `json:"advanced"`
	Celebration  string       `json:"celebration,omitempty"`
	Sunlight     int          `json:"sunlight"`
}

func (v WaterView) String() string {
	s := fmt.Sprintf("💧 Watered %s (%d pts, %s). Sunlight left: %d", v.Name, v.GrowthPoints, v.Stage.Label(), v.Sunlight)
	if v.Celebration != "" {
		s += "\n" + v.Celebration
	}
	return s
}

// NewWaterCommand creates the water command.
func NewWaterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "water [plant-id]",
		Short: fmt.Sprintf("Spend %d sunlight to add %d growth points", garden.WaterCost, garden.WaterGrowth),
		Long: fmt.Sprintf(`Water a plant. Costs %d sunlight and adds %d growth points; the plant
advances at most one stage per watering. Defaults to %s.`, garden.WaterCost, garden.WaterGrowth, garden.DefaultPlantID),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plantID := garden.DefaultPlantID
			if len(args) == 1 {
				plantID = args[0]
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				res, err := s.eng.Water(s.ctx, plantID)
				if err != nil {
					return s.engineFailure(err)
				}
				if !res.Applied {
					return s.format.Fail(ExitFailure, ErrCodeInsufficient,
						fmt.Sprintf("not enough sunlight: need %d, have %d", garden.WaterCost, res.Sunlight), nil)
				}
				return s.format.Success(WaterView{
					PlantID:      res.Plant.ID,
					Name:         res.Plant.Name,
					GrowthPoints: res.Plant.GrowthPoints,
					Stage:        res.Plant.Stage,
					Advanced:     res.Transition.Advanced,
					Celebration:  res.Celebration,
					Sunlight:     res.Sunlight,
				})
			})
		},
	}
}

// BuyView reports a successful purchase.
type BuyView struct {
	Notification string           `json:"notification"`
	PlantID      string           `json:"plant_id"`
	Name         string           `json:"name"`
	Type         garden.PlantType `json:"type"`
	Sunlight     int              `json:"sunlight"`
}

func (v BuyView) String() string {
	return fmt.Sprintf("%s\n  %s (%s). Sunlight left: %d", v.Notification, v.Name, v.PlantID, v.Sunlight)
}

// parsePlantType accepts MATH_FLOWER, math_flower or math-flower.
func parsePlantType(arg string) (garden.PlantType, bool) {
	t := garden.PlantType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(arg), "-", "_")))
	return t, garden.ValidPlantTypes[t]
}

// NewBuyCommand creates the buy command.
func NewBuyCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "buy <plant-type>",
		Short: fmt.Sprintf("Spend %d sunlight on a new seed", garden.AcquireCost),
		Long: `Buy a seed from the shop (see "garden shop" for the types). The new plant is
named "<name>-<n>" where n is the number of plants owned after the purchase.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			t, ok := parsePlantType(args[0])
			if !ok {
				choices := lo.Map(garden.Catalog, func(item garden.ShopItem, _ int) string { return string(item.Type) })
				return formatter.Fail(ExitCommandError, ErrCodeInvalidInput,
					fmt.Sprintf("unknown plant type %q (choose from %s)", args[0], strings.Join(choices, ", ")), nil)
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				res, err := s.eng.Acquire(s.ctx, t, name)
				if err != nil {
					return s.engineFailure(err)
				}
				if !res.Applied {
					return s.format.Fail(ExitFailure, ErrCodeInsufficient,
						fmt.Sprintf("not enough sunlight: need %d, have %d", garden.AcquireCost, res.Sunlight), nil)
				}
				return s.format.Success(BuyView{
					Notification: res.Notification,
					PlantID:      res.Plant.ID,
					Name:         res.Plant.Name,
					Type:         res.Plant.Type,
					Sunlight:     res.Sunlight,
				})
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "base name for the plant (default: shop name)")

	return cmd
}

// WeatherView reports the weather and the accepted values.
type WeatherView struct {
	Weather garden.Weather `json:"weather"`
	Choices []string       `json:"choices"`
}

func (v WeatherView) String() string {
	return fmt.Sprintf("Weather: %s (choices: %s)", v.Weather, strings.Join(v.Choices, ", "))
}

func weatherChoices() []string {
	choices := lo.Map(lo.Keys(garden.ValidWeathers), func(w garden.Weather, _ int) string { return string(w) })
	slices.Sort(choices)
	return choices
}

// NewWeatherCommand creates the weather command.
func NewWeatherCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "weather [name]",
		Short: "Show or change the weather",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			var w garden.Weather
			if len(args) == 1 {
				w = garden.Weather(strings.ToLower(strings.TrimSpace(args[0])))
				if !garden.ValidWeathers[w] {
					return formatter.Fail(ExitCommandError, ErrCodeInvalidInput,
						fmt.Sprintf("unknown weather %q (choose from %s)", args[0], strings.Join(weatherChoices(), ", ")), nil)
				}
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				if w != "" {
					if err := s.eng.SetWeather(s.ctx, w); err != nil {
						return s.engineFailure(err)
					}
				}
				return s.format.Success(WeatherView{Weather: s.eng.Snapshot().Stats.Weather, Choices: weatherChoices()})
			})
		},
	}
}
