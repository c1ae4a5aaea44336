package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/garden/internal/garden"
)

func TestAcquire_WithExactlyFifty(t *testing.T) {
	te := newTestEngine(t, withSunlight(50), nil)

	res, err := te.Acquire(context.Background(), garden.PlantMathFlower, "数学之花")
	require.NoError(t, err)
	require.True(t, res.Applied)

	assert.Equal(t, "成功购买了 数学之花！🌿", res.Notification)
	assert.Equal(t, 0, res.Sunlight)
	assert.Equal(t, "plant-id-1", res.Plant.ID)
	assert.Equal(t, "数学之花-2", res.Plant.Name)
	assert.Equal(t, garden.StageSeed, res.Plant.Stage)
	assert.Equal(t, 0, res.Plant.GrowthPoints)
	assert.Equal(t, 0, res.Plant.FlowerLanguages.Len())

	s := te.Snapshot()
	assert.Equal(t, 0, s.Stats.Sunlight)
	require.Len(t, s.Stats.OwnedPlants, 2)
	assert.Equal(t, res.Plant, s.Stats.OwnedPlants[1])
}

func TestAcquire_InsufficientSunlight(t *testing.T) {
	te := newTestEngine(t, withSunlight(49), nil)

	res, err := te.Acquire(context.Background(), garden.PlantLanguageTree, "")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, ReasonInsufficientSunlight, res.Reason)

	s := te.Snapshot()
	assert.Equal(t, 49, s.Stats.Sunlight)
	assert.Len(t, s.Stats.OwnedPlants, 1)
	assert.Equal(t, int64(0), te.Revision())
}

func TestAcquire_UnknownType(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	_, err := te.Acquire(context.Background(), garden.PlantType("CACTUS"), "x")
	require.Error(t, err)
	assert.True(t, IsUnknownPlantType(err))
	assert.Equal(t, garden.StartingSunlight, te.Snapshot().Stats.Sunlight)
}

func TestAcquire_DefaultNameAndSequence(t *testing.T) {
	te := newTestEngine(t, withSunlight(200), nil)
	ctx := context.Background()

	a, err := te.Acquire(ctx, garden.PlantScienceFruit, "")
	require.NoError(t, err)
	b, err := te.Acquire(ctx, garden.PlantScienceFruit, "  ")
	require.NoError(t, err)

	assert.Equal(t, "科学之果-2", a.Plant.Name)
	assert.Equal(t, "科学之果-3", b.Plant.Name)
	assert.NotEqual(t, a.Plant.ID, b.Plant.ID)

	s := te.Snapshot()
	assert.Equal(t, []string{garden.DefaultPlantID, a.Plant.ID, b.Plant.ID},
		[]string{s.Stats.OwnedPlants[0].ID, s.Stats.OwnedPlants[1].ID, s.Stats.OwnedPlants[2].ID})
}

func TestAcquire_UUIDv7Ids(t *testing.T) {
	te := newTestEngine(t, nil, nil, WithIDGenerator(UUIDv7Generator{}))

	res, err := te.Acquire(context.Background(), garden.PlantMathFlower, "")
	require.NoError(t, err)
	assert.Regexp(t, `^plant-[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}$`, res.Plant.ID)
}

func TestSetWeather(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, te.SetWeather(ctx, garden.WeatherCherry))
	assert.Equal(t, garden.WeatherCherry, te.Snapshot().Stats.Weather)
	assert.Equal(t, garden.StartingSunlight, te.Snapshot().Stats.Sunlight)

	// Same weather again is not a new revision.
	require.NoError(t, te.SetWeather(ctx, garden.WeatherCherry))
	assert.Equal(t, int64(1), te.Revision())

	err := te.SetWeather(ctx, garden.Weather("foggy"))
	assert.True(t, IsUnknownWeather(err))
}
