package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/garden/internal/garden"
)

// PlantView is one owned plant as shown by status.
type PlantView struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            garden.PlantType `json:"type"`
	Stage           garden.Stage     `json:"stage"`
	GrowthPoints    int              `json:"growth_points"`
	Progress        float64          `json:"progress"`
	FlowerLanguages int              `json:"flower_languages"`
}

// StatusView is the garden overview.
type StatusView struct {
	Sunlight              int            `json:"sunlight"`
	Weather               garden.Weather `json:"weather"`
	TotalKnowledgeLearned int            `json:"total_knowledge_learned"`
	Plants                []PlantView    `json:"plants"`
	LoadStatus            string         `json:"load_status"`
}

func newStatusView(snap *garden.Snapshot, loadStatus string) StatusView {
	return StatusView{
		Sunlight:              snap.Stats.Sunlight,
		Weather:               snap.Stats.Weather,
		TotalKnowledgeLearned: snap.Stats.TotalKnowledgeLearned,
		LoadStatus:            loadStatus,
		Plants: lo.Map(snap.Stats.OwnedPlants, func(p garden.PlantInstance, _ int) PlantView {
			return PlantView{
				ID:              p.ID,
				Name:            p.Name,
				Type:            p.Type,
				Stage:           p.Stage,
				GrowthPoints:    p.GrowthPoints,
				Progress:        garden.Progress(p),
				FlowerLanguages: p.FlowerLanguages.Len(),
			}
		}),
	}
}

func (v StatusView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "☀️  Sunlight: %d   Weather: %s   Learned: %d\n", v.Sunlight, v.Weather, v.TotalKnowledgeLearned)
	for _, p := range v.Plants {
		fmt.Fprintf(&b, "  %-24s %s  %s %3.0f%%  (%d pts, %d 花语)\n",
			p.ID, p.Name, p.Stage.Label(), p.Progress, p.GrowthPoints, p.FlowerLanguages)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sunlight, weather and owned plants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				return s.format.Success(newStatusView(s.eng.Snapshot(), s.eng.LoadStatus().String()))
			})
		},
	}
}

// ShopView lists the purchasable species.
type ShopView []garden.ShopItem

func (v ShopView) String() string {
	lines := lo.Map(v, func(item garden.ShopItem, _ int) string {
		return fmt.Sprintf("  %s %-14s %s  %d ☀️", item.Icon, item.Type, item.Name, item.Cost)
	})
	return "Seed shop:\n" + strings.Join(lines, "\n")
}

// NewShopCommand creates the shop command. It needs no storage.
func NewShopCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "List plants that can be bought",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(rootOpts, cmd).Success(ShopView(garden.Catalog))
		},
	}
}
