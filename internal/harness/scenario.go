package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a garden test scenario: a starting state, a scripted
// generator, a flow of actions, and assertions on the result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial overrides fields of the default snapshot before the engine
	// loads it. Nil starts from an empty store.
	Initial *InitialState `yaml:"initial,omitempty"`

	// Generator scripts the AI collaborator.
	Generator GeneratorScript `yaml:"generator,omitempty"`

	// Flow contains the actions to run, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// InitialState seeds the stored snapshot.
type InitialState struct {
	Sunlight     *int   `yaml:"sunlight,omitempty"`
	Weather      string `yaml:"weather,omitempty"`
	TotalLearned int    `yaml:"total_learned,omitempty"`
}

// GeneratorScript lists scripted generator replies. The last reply of each
// list repeats; an empty list means every call fails.
type GeneratorScript struct {
	Cards []ScriptedCard `yaml:"cards,omitempty"`
	Lines []ScriptedLine `yaml:"lines,omitempty"`
}

// ScriptedCard is one KnowledgeCard reply.
type ScriptedCard struct {
	Content  string `yaml:"content"`
	Source   string `yaml:"source"`
	Category string `yaml:"category"`
	Reward   int    `yaml:"reward"`
	Fail     bool   `yaml:"fail"`
}

// ScriptedLine is one FlowerLanguage reply.
type ScriptedLine struct {
	Text string `yaml:"text"`
	Fail bool   `yaml:"fail"`
}

// FlowStep is one action, optionally repeated.
type FlowStep struct {
	// Action names the engine operation; see the package doc for the list.
	Action string `yaml:"action"`

	// Args contains the action arguments.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Repeat runs the step this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// Advance moves the clock forward before each run (e.g. "1m").
	Advance string `yaml:"advance,omitempty"`

	// Expect is checked against every run of the step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is applied, insufficient_sunlight, already_learned or error.
	Outcome string `yaml:"outcome"`

	// Error is the expected engine error code when Outcome is error.
	Error string `yaml:"error,omitempty"`

	// Result is a subset match on the step's result fields.
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is used by trace_contains and trace_count.
	Action string `yaml:"action,omitempty"`

	// Outcome narrows trace_contains and trace_count to one outcome.
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Plant selects the plant (plant).
	Plant string `yaml:"plant,omitempty"`

	// Expect contains expected field values (final_state, plant).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertPlant         = "plant"
	AssertPersisted     = "persisted"
)

// Action names.
const (
	ActionWater   = "water"
	ActionBuy     = "buy"
	ActionLearn   = "learn"
	ActionRelearn = "relearn"
	ActionFetch   = "fetch"
	ActionCheckIn = "checkin"
	ActionWeather = "weather"
)

var validActions = map[string]bool{
	ActionWater: true, ActionBuy: true, ActionLearn: true, ActionRelearn: true,
	ActionFetch: true, ActionCheckIn: true, ActionWeather: true,
}

var validOutcomes = map[string]bool{
	OutcomeApplied: true, OutcomeInsufficient: true, OutcomeAlreadyLearned: true, OutcomeError: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// DiscoverScenarios returns the .yaml files in dir, sorted by name.
func DiscoverScenarios(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Initial != nil && s.Initial.Sunlight != nil && *s.Initial.Sunlight < 0 {
		return fmt.Errorf("initial.sunlight must be non-negative")
	}

	for i, step := range s.Flow {
		if step.Action == "" {
			return fmt.Errorf("flow[%d]: action is required", i)
		}
		if !validActions[step.Action] {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Action)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("flow[%d]: repeat must be non-negative", i)
		}
		if step.Advance != "" {
			if _, err := time.ParseDuration(step.Advance); err != nil {
				return fmt.Errorf("flow[%d]: invalid advance %q: %w", i, step.Advance, err)
			}
		}
		if step.Expect != nil && !validOutcomes[step.Expect.Outcome] {
			return fmt.Errorf("flow[%d].expect: unknown outcome %q", i, step.Expect.Outcome)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertPlant:
		if a.Plant == "" {
			return fmt.Errorf("assertions[%d]: plant is required for plant", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for plant", index)
		}
	case AssertPersisted:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
