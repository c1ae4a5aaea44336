package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/garden/internal/engine"
	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/generator"
	"github.com/roach88/garden/internal/testutil"
)

// cliEnv runs commands against one SQLite file in an isolated HOME, so state
// carries across invocations the way it does for a real user.
type cliEnv struct {
	db    string
	home  string
	gen   *testutil.StubGenerator
	clock *testutil.FixedClock
	ids   *testutil.SequentialIDs
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	return &cliEnv{
		db:    filepath.Join(home, "data", "garden.db"),
		home:  home,
		gen:   testutil.NewStubGenerator(),
		clock: testutil.NewFixedClock(testutil.GoldenTime),
		ids:   testutil.NewSequentialIDs("id"),
	}
}

func (e *cliEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	opts := &RootOptions{
		Generator:     e.gen,
		EngineOptions: []engine.Option{engine.WithClock(e.clock), engine.WithIDGenerator(e.ids)},
	}
	cmd := NewRootCommandWithOptions(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--db", e.db))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

// runJSON runs a command with --format json and decodes its data payload.
func runJSON[T any](t *testing.T, e *cliEnv, args ...string) T {
	t.Helper()
	out, err := e.run(t, append(args, "--format", "json")...)
	require.NoError(t, err, out)

	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	return resp.Data
}

func TestStatus_FreshGarden(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunlight: 100")
	assert.Contains(t, out, "初代幸福树")
	assert.Contains(t, out, "种子🌰")

	status := runJSON[StatusView](t, env, "status")
	assert.Equal(t, 100, status.Sunlight)
	assert.Equal(t, garden.WeatherSunny, status.Weather)
	require.Len(t, status.Plants, 1)
	assert.Equal(t, garden.DefaultPlantID, status.Plants[0].ID)
	assert.Equal(t, "missing", status.LoadStatus)
}

func TestInvalidFormat(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "status", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestWater_PersistsAcrossInvocations(t *testing.T) {
	env := newCLIEnv(t)

	var last string
	for i := 0; i < 5; i++ {
		out, err := env.run(t, "water")
		require.NoError(t, err)
		last = out
	}
	assert.Contains(t, last, "初代幸福树 破土而出了！🌱")

	status := runJSON[StatusView](t, env, "status")
	assert.Equal(t, 75, status.Sunlight)
	assert.Equal(t, 50, status.Plants[0].GrowthPoints)
	assert.Equal(t, garden.StageSprout, status.Plants[0].Stage)
	assert.Equal(t, "ok", status.LoadStatus)
}

func TestWater_UnknownPlant(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "water", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")

	assert.Equal(t, 100, runJSON[StatusView](t, env, "status").Sunlight)
}

func TestWater_InsufficientSunlight(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "buy", "math_flower")
	require.NoError(t, err)
	_, err = env.run(t, "buy", "science_fruit")
	require.NoError(t, err)

	out, err := env.run(t, "water")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]: not enough sunlight: need 5, have 0")
}

func TestBuy(t *testing.T) {
	env := newCLIEnv(t)

	bought := runJSON[BuyView](t, env, "buy", "math-flower", "--name", "数学之花")
	assert.Equal(t, "成功购买了 数学之花！🌿", bought.Notification)
	assert.Equal(t, "plant-id-1", bought.PlantID)
	assert.Equal(t, "数学之花-2", bought.Name)
	assert.Equal(t, garden.PlantMathFlower, bought.Type)
	assert.Equal(t, 50, bought.Sunlight)

	status := runJSON[StatusView](t, env, "status")
	require.Len(t, status.Plants, 2)
	assert.Equal(t, garden.StageSeed, status.Plants[1].Stage)
}

func TestBuy_UnknownType(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "buy", "cactus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "MATH_FLOWER, LANGUAGE_TREE, SCIENCE_FRUIT")
}

func TestShop(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "数学之花")
	assert.Contains(t, out, "语言之树")
	assert.Contains(t, out, "科学之果")
}

func TestLearn_Accept(t *testing.T) {
	env := newCLIEnv(t)
	env.gen.WithCards(testutil.StubCard{Card: generator.Card{Content: "水在4°C时密度最大。", Source: "物理", Category: "冷知识", Reward: 12}})

	card := runJSON[CardView](t, env, "learn", "--accept")
	assert.True(t, card.Learned)
	assert.False(t, card.Fallback)
	assert.Equal(t, "水在4°C时密度最大。", card.Content)
	assert.Equal(t, 112, card.Sunlight)

	coll := runJSON[Collection](t, env, "collection")
	require.Len(t, coll, 1)
	assert.Equal(t, "2024/3/1", coll[0].Date)
}

func TestLearn_FallbackCard(t *testing.T) {
	env := newCLIEnv(t)

	card := runJSON[CardView](t, env, "learn", "--accept")
	assert.True(t, card.Fallback)
	assert.Equal(t, "系统提示", card.Source)
	assert.Equal(t, 105, card.Sunlight)
}

func TestLearn_JSONWithoutAcceptOnlyShows(t *testing.T) {
	env := newCLIEnv(t)

	card := runJSON[CardView](t, env, "learn")
	assert.False(t, card.Learned)
	assert.Equal(t, 100, runJSON[StatusView](t, env, "status").Sunlight)
}

func TestLearn_Prompt(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.runWithInput(t, "y\n", "learn")
	require.NoError(t, err)
	assert.Contains(t, out, "Learn it? [y/N]")
	assert.Contains(t, out, "Learned! Sunlight: 105")

	out, err = env.runWithInput(t, "", "learn")
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped.")
	assert.Equal(t, 105, runJSON[StatusView](t, env, "status").Sunlight)
}

func TestCheckIn_RequiresInputs(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing goal", []string{"checkin", "--learned", "光合作用"}, "--goal must not be empty"},
		{"blank goal", []string{"checkin", "--goal", "   ", "--learned", "光合作用"}, "--goal must not be empty"},
		{"missing learned", []string{"checkin", "--goal", "读书"}, "--learned must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}

	_, err := os.Stat(env.db)
	assert.True(t, os.IsNotExist(err), "rejected input must not touch storage")
}

func TestCheckIn_FallbackAndRecords(t *testing.T) {
	env := newCLIEnv(t)

	res := runJSON[CheckInView](t, env, "checkin", "--goal", "读书30分钟", "--learned", "光合作用")
	assert.Equal(t, "花语已生成，植物很高兴！🌸", res.Notification)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.FlowerLanguage, "光合作用")
	assert.Equal(t, "09:30", res.Timestamp)
	assert.Equal(t, 10, res.Points)
	assert.Equal(t, 110, res.Sunlight)

	history, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, history, "09:30  读书30分钟  +10")

	flowers := runJSON[FlowerList](t, env, "flowers")
	require.Len(t, flowers, 1)
	assert.Equal(t, "1709285400000-ai", flowers[0].ID)
	assert.Equal(t, "光合作用", flowers[0].KnowledgePoint)
}

func TestWeather(t *testing.T) {
	env := newCLIEnv(t)

	w := runJSON[WeatherView](t, env, "weather", "Snowy")
	assert.Equal(t, garden.WeatherSnowy, w.Weather)

	out, err := env.run(t, "weather")
	require.NoError(t, err)
	assert.Contains(t, out, "Weather: snowy")

	out, err = env.run(t, "weather", "foggy")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unknown weather")
}

func TestEmptyListsAreArrays(t *testing.T) {
	env := newCLIEnv(t)

	for _, command := range []string{"history", "collection", "flowers"} {
		t.Run(command, func(t *testing.T) {
			out, err := env.run(t, command, "--format", "json")
			require.NoError(t, err)
			assert.JSONEq(t, `{"status":"ok","data":[]}`, out)
		})
	}

	out, err := env.run(t, "collection")
	require.NoError(t, err)
	assert.Contains(t, out, "Your collection is empty.")
}

func TestMemoryDB(t *testing.T) {
	env := newCLIEnv(t)
	env.db = ":memory:"

	_, err := env.run(t, "water")
	require.NoError(t, err)

	// Nothing carries over between invocations.
	assert.Equal(t, 100, runJSON[StatusView](t, env, "status").Sunlight)
}

func TestInvalidConfig(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.home, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  provider: telepathy\n"), 0o644))

	out, err := env.run(t, "status", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestConfigFileSelectsStorage(t *testing.T) {
	env := newCLIEnv(t)
	dbPath := filepath.Join(env.home, "from-config.db")
	cfg := "storage:\n  driver: sqlite\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "garden.yaml"), []byte(cfg), 0o644))

	opts := &RootOptions{Generator: env.gen}
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"water"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}
