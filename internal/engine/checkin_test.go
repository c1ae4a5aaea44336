package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/testutil"
)

func TestCheckIn_CollaboratorFailure(t *testing.T) {
	te := newTestEngine(t, nil, testutil.NewStubGenerator())

	res, err := te.CheckIn(context.Background(), "读书30分钟", "光合作用")
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Equal(t, CheckInNotification, res.Notification)
	assert.Contains(t, res.FlowerLanguage.Message, "光合作用")
	assert.Equal(t, "你学会了【光合作用】，你的植物正在静静地吸收这份养分。", res.FlowerLanguage.Message)
	assert.Equal(t, garden.CheckInRecord{ID: "1709285400000", Goal: "读书30分钟", Timestamp: "09:30", Points: 10}, res.Record)
	assert.Equal(t, garden.FlowerLanguage{
		ID: "1709285400000-ai", KnowledgePoint: "光合作用", Message: res.FlowerLanguage.Message, Date: "2024/3/1",
	}, res.FlowerLanguage)

	s := te.Snapshot()
	assert.Equal(t, 110, s.Stats.Sunlight)
	assert.Equal(t, 0, s.Stats.TotalKnowledgeLearned)
	assert.Equal(t, 1, s.Stats.OwnedPlants[0].FlowerLanguages.Len())
	assert.Equal(t, 1, s.CheckInHistory.Len())
	assert.Equal(t, s, te.stored(t))
}

func TestCheckIn_SameMillisecondGetsDistinctIDs(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	ctx := context.Background()

	first, err := te.CheckIn(ctx, "g", "一")
	require.NoError(t, err)
	second, err := te.CheckIn(ctx, "g", "二")
	require.NoError(t, err)

	assert.Equal(t, "1709285400000", first.Record.ID)
	assert.Equal(t, "1709285400001", second.Record.ID)
	assert.Equal(t, "1709285400001-ai", second.FlowerLanguage.ID)

	var order []string
	for _, fl := range te.Snapshot().AllFlowerLanguages() {
		order = append(order, fl.KnowledgePoint)
	}
	assert.Equal(t, []string{"二", "一"}, order)
}

func TestCheckIn_GeneratedLine(t *testing.T) {
	gen := testutil.NewStubGenerator().WithLines(testutil.StubLine{Text: "你学会了【勾股定理】，你的植物长出了直角形的新叶。"})
	te := newTestEngine(t, nil, gen)

	res, err := te.CheckIn(context.Background(), "做题", "勾股定理")
	require.NoError(t, err)
	assert.False(t, res.UsedFallback)
	assert.Equal(t, "你学会了【勾股定理】，你的植物长出了直角形的新叶。", res.FlowerLanguage.Message)
	assert.Equal(t, []string{"line:勾股定理"}, gen.Calls())
}

func TestCheckIn_BlankLineUsesFallback(t *testing.T) {
	gen := testutil.NewStubGenerator().WithLines(testutil.StubLine{Text: "   "})
	te := newTestEngine(t, nil, gen)

	res, err := te.CheckIn(context.Background(), "g", "kp")
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
}

func TestCheckIn_AttachesToFirstPlant(t *testing.T) {
	te := newTestEngine(t, withSunlight(100), nil)
	ctx := context.Background()

	_, err := te.Acquire(ctx, garden.PlantMathFlower, "")
	require.NoError(t, err)
	_, err = te.CheckIn(ctx, "g", "kp")
	require.NoError(t, err)

	s := te.Snapshot()
	assert.Equal(t, 1, s.Stats.OwnedPlants[0].FlowerLanguages.Len())
	assert.Equal(t, 0, s.Stats.OwnedPlants[1].FlowerLanguages.Len())
}

func TestCheckIn_NormalizesInput(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	res, err := te.CheckIn(context.Background(), "  cafe\u0301 ", "  cafe\u0301\n")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", res.Record.Goal)
	assert.Equal(t, "caf\u00e9", res.FlowerLanguage.KnowledgePoint)
}

func TestCheckIn_HistoriesCapped(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		te.clock.Advance(time.Minute)
		_, err := te.CheckIn(ctx, fmt.Sprintf("goal-%d", i), "kp")
		require.NoError(t, err)
	}

	s := te.Snapshot()
	assert.Equal(t, 10, s.CheckInHistory.Len())
	assert.Equal(t, 50, s.Stats.OwnedPlants[0].FlowerLanguages.Len())
	newest, _ := s.CheckInHistory.At(0)
	assert.Equal(t, "goal-59", newest.Goal)
	assert.Equal(t, 100+60*10, s.Stats.Sunlight)
}

func TestCheckIn_AbandonedCallerStillCommits(t *testing.T) {
	gen := testutil.NewStubGenerator().WithLines(testutil.StubLine{Text: "你学会了【x】，花开了。"}).Block()
	te := newTestEngine(t, nil, gen)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := te.CheckIn(ctx, "g", "x")
		result <- err
	}()

	<-gen.Entered()
	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.Equal(t, int64(0), te.Revision())

	gen.Release()
	require.Eventually(t, func() bool { return te.Revision() == 1 }, 2*time.Second, time.Millisecond)

	s := te.Snapshot()
	assert.Equal(t, 110, s.Stats.Sunlight)
	fl, _ := s.Stats.OwnedPlants[0].FlowerLanguages.At(0)
	assert.Equal(t, "你学会了【x】，花开了。", fl.Message)
}

func TestCheckIn_ReadsProceedWhileGenerating(t *testing.T) {
	gen := testutil.NewStubGenerator().WithLines(testutil.StubLine{Text: "line"}).Block()
	te := newTestEngine(t, nil, gen)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		_, err := te.CheckIn(ctx, "g", "kp")
		result <- err
	}()
	<-gen.Entered()

	// Generation happens outside the writer loop, so other commands commit.
	res, err := te.Water(ctx, garden.DefaultPlantID)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 95, te.Snapshot().Stats.Sunlight)

	gen.Release()
	require.NoError(t, <-result)
	assert.Equal(t, 105, te.Snapshot().Stats.Sunlight)
}
