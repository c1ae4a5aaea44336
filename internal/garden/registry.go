package garden

import (
	"fmt"

	"github.com/samber/lo"
)

// ShopItem is one purchasable species.
type ShopItem struct {
	Type PlantType `json:"type"`
	Name string    `json:"name"`
	Cost int       `json:"cost"`
	Icon string    `json:"icon"`
}

// Catalog lists what the seed shop sells.
var Catalog = []ShopItem{
	{Type: PlantMathFlower, Name: "数学之花", Cost: AcquireCost, Icon: "📐"},
	{Type: PlantLanguageTree, Name: "语言之树", Cost: AcquireCost, Icon: "📖"},
	{Type: PlantScienceFruit, Name: "科学之果", Cost: AcquireCost, Icon: "🧪"},
}

// CatalogItem looks up the shop entry for a species.
func CatalogItem(t PlantType) (ShopItem, bool) {
	return lo.Find(Catalog, func(item ShopItem) bool {
		return item.Type == t
	})
}

// NewPlant creates a seed with no growth and no flower languages.
func NewPlant(id string, t PlantType, name string) PlantInstance {
	return PlantInstance{
		ID:    id,
		Type:  t,
		Name:  name,
		Stage: StageSeed,
	}
}

// AcquiredName is the display name given to the n-th owned plant when it is
// bought under the shop name base.
func AcquiredName(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}

// Plant returns a pointer to the owned plant with the given id.
func (s *UserStats) Plant(id string) (*PlantInstance, bool) {
	_, idx, ok := lo.FindIndexOf(s.OwnedPlants, func(p PlantInstance) bool {
		return p.ID == id
	})
	if !ok {
		return nil, false
	}
	return &s.OwnedPlants[idx], true
}

// AddPlant appends p to the owned plants, preserving acquisition order.
func (s *UserStats) AddPlant(p PlantInstance) {
	s.OwnedPlants = append(s.OwnedPlants, p)
}

// DefaultPlant returns the first owned plant.
func (s *UserStats) DefaultPlant() (*PlantInstance, bool) {
	if len(s.OwnedPlants) == 0 {
		return nil, false
	}
	return &s.OwnedPlants[0], true
}

// AttachFlowerLanguage records rec on the first owned plant. Check-ins are
// account-wide, so the target is always OwnedPlants[0] regardless of which
// plant the user was looking at. Reports false if there are no plants.
func (s *UserStats) AttachFlowerLanguage(rec FlowerLanguage) bool {
	p, ok := s.DefaultPlant()
	if !ok {
		return false
	}
	p.FlowerLanguages.Push(rec)
	return true
}
