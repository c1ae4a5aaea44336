package garden

import (
	"fmt"
	"sort"
)

// Stage is a plant life stage. Stages are totally ordered and FLOWER is terminal.
type Stage string

const (
	StageSeed    Stage = "SEED"
	StageSprout  Stage = "SPROUT"
	StageSapling Stage = "SAPLING"
	StageFlower  Stage = "FLOWER"
)

// stageOrder gives each stage its rank in the progression.
var stageOrder = map[Stage]int{
	StageSeed:    0,
	StageSprout:  1,
	StageSapling: 2,
	StageFlower:  3,
}

// Rank returns the position of s in the progression, or -1 if s is unknown.
func (s Stage) Rank() int {
	if r, ok := stageOrder[s]; ok {
		return r
	}
	return -1
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	return s.Rank() >= 0
}

// Label returns the display label shown next to a plant.
func (s Stage) Label() string {
	switch s {
	case StageSeed:
		return "种子🌰"
	case StageSprout:
		return "发芽🌱"
	case StageSapling:
		return "幼苗🌿"
	case StageFlower:
		return "开花🌸"
	default:
		return string(s)
	}
}

// PlantType is an opaque species tag.
type PlantType string

const (
	PlantHappyTree    PlantType = "HAPPY_TREE"
	PlantMathFlower   PlantType = "MATH_FLOWER"
	PlantLanguageTree PlantType = "LANGUAGE_TREE"
	PlantScienceFruit PlantType = "SCIENCE_FRUIT"
)

// ValidPlantTypes lists every known species.
var ValidPlantTypes = map[PlantType]bool{
	PlantHappyTree:    true,
	PlantMathFlower:   true,
	PlantLanguageTree: true,
	PlantScienceFruit: true,
}

// Weather is cosmetic; it persists with the snapshot but never affects the economy.
type Weather string

const (
	WeatherSunny  Weather = "sunny"
	WeatherRainy  Weather = "rainy"
	WeatherSnowy  Weather = "snowy"
	WeatherCherry Weather = "cherry"
	WeatherAutumn Weather = "autumn"
)

// ValidWeathers lists the accepted weather values.
var ValidWeathers = map[Weather]bool{
	WeatherSunny:  true,
	WeatherRainy:  true,
	WeatherSnowy:  true,
	WeatherCherry: true,
	WeatherAutumn: true,
}

// FlowerLanguage is the generated message attached to a plant by a check-in.
type FlowerLanguage struct {
	ID             string `json:"id"`
	KnowledgePoint string `json:"knowledgePoint"`
	Message        string `json:"message"`
	Date           string `json:"date"`
}

// KnowledgeItem is one learned knowledge card.
type KnowledgeItem struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	Category string `json:"category"`
	Reward   int    `json:"reward"`
	Date     string `json:"date"`
}

// CheckInRecord is one committed study check-in.
type CheckInRecord struct {
	ID        string `json:"id"`
	Goal      string `json:"goal"`
	Timestamp string `json:"timestamp"`
	Points    int    `json:"points"`
}

// PlantInstance is one grown organism.
type PlantInstance struct {
	ID              string                                    `json:"id"`
	Type            PlantType                                 `json:"type"`
	Name            string                                    `json:"name"`
	GrowthPoints    int                                       `json:"growthPoints"`
	Stage           Stage                                     `json:"stage"`
	FlowerLanguages History[FlowerLanguage, FlowerLanguageCap] `json:"flowerLanguages"`
}

// UserStats is the account-wide state. OwnedPlants[0] is the default plant.
type UserStats struct {
	Sunlight              int             `json:"sunlight"`
	TotalKnowledgeLearned int             `json:"totalKnowledgeLearned"`
	Weather               Weather         `json:"weather"`
	OwnedPlants           []PlantInstance `json:"ownedPlants"`
}

// Snapshot is the full persisted engine state.
type Snapshot struct {
	Stats          UserStats                             `json:"stats"`
	Collection     History[KnowledgeItem, CollectionCap] `json:"collection"`
	CheckInHistory History[CheckInRecord, CheckInCap]    `json:"checkInHistory"`
}

// Default plant and starting balance for a fresh garden.
const (
	DefaultPlantID   = "happy-tree-1"
	DefaultPlantName = "初代幸福树"
	StartingSunlight = 100
)

// DefaultSnapshot returns the state of a garden that has never been saved.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Stats: UserStats{
			Sunlight:    StartingSunlight,
			Weather:     WeatherSunny,
			OwnedPlants: []PlantInstance{NewPlant(DefaultPlantID, PlantHappyTree, DefaultPlantName)},
		},
	}
}

// Clone returns a deep copy. The engine mutates clones and swaps them in,
// so readers never observe a partially applied command.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Stats:          s.Stats,
		Collection:     s.Collection.Clone(),
		CheckInHistory: s.CheckInHistory.Clone(),
	}
	if s.Stats.OwnedPlants != nil {
		out.Stats.OwnedPlants = make([]PlantInstance, len(s.Stats.OwnedPlants))
		for i, p := range s.Stats.OwnedPlants {
			p.FlowerLanguages = p.FlowerLanguages.Clone()
			out.Stats.OwnedPlants[i] = p
		}
	}
	return out
}

// AllFlowerLanguages returns every plant's flower languages in one list,
// sorted by id descending (ids are time-derived, so newest first).
func (s *Snapshot) AllFlowerLanguages() []FlowerLanguage {
	var all []FlowerLanguage
	for _, p := range s.Stats.OwnedPlants {
		all = append(all, p.FlowerLanguages.Items()...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ID > all[j].ID
	})
	return all
}

// Validate checks the structural invariants of a decoded snapshot.
func (s *Snapshot) Validate() error {
	if s.Stats.Sunlight < 0 {
		return fmt.Errorf("sunlight is negative: %d", s.Stats.Sunlight)
	}
	if s.Stats.TotalKnowledgeLearned < 0 {
		return fmt.Errorf("totalKnowledgeLearned is negative: %d", s.Stats.TotalKnowledgeLearned)
	}
	if !ValidWeathers[s.Stats.Weather] {
		return fmt.Errorf("unknown weather %q", s.Stats.Weather)
	}
	if len(s.Stats.OwnedPlants) == 0 {
		return fmt.Errorf("ownedPlants is empty")
	}
	seen := make(map[string]bool, len(s.Stats.OwnedPlants))
	for i, p := range s.Stats.OwnedPlants {
		if p.ID == "" {
			return fmt.Errorf("ownedPlants[%d]: empty id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("ownedPlants[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
		if !ValidPlantTypes[p.Type] {
			return fmt.Errorf("ownedPlants[%d]: unknown type %q", i, p.Type)
		}
		if !p.Stage.Valid() {
			return fmt.Errorf("ownedPlants[%d]: unknown stage %q", i, p.Stage)
		}
		if p.GrowthPoints < 0 {
			return fmt.Errorf("ownedPlants[%d]: growthPoints is negative", i)
		}
	}
	return nil
}
