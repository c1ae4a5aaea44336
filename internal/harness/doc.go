// Package harness runs YAML scenarios against a real garden engine.
//
// Each scenario gets a fresh in-memory store, a fixed clock starting at
// testutil.GoldenTime, sequential plant ids, and a scripted generator, so
// the same file always produces the same trace.
//
// # Scenario Format
//
//	name: water_to_sprout
//	description: "Five waterings take the starter seed to a sprout"
//	initial:
//	  sunlight: 100
//	generator:
//	  cards:
//	    - { content: "...", source: "...", category: "...", reward: 12 }
//	  lines:
//	    - { fail: true }
//	flow:
//	  - action: water
//	    args: { plant: happy-tree-1 }
//	    repeat: 5
//	    expect:
//	      outcome: applied
//	assertions:
//	  - type: final_state
//	    expect: { sunlight: 75 }
//	  - type: plant
//	    plant: happy-tree-1
//	    expect: { stage: SPROUT, growth_points: 50 }
//
// expect is checked on every repetition of a step.
//
// # Actions
//
//   - water: args plant (default happy-tree-1)
//   - buy: args type, name
//   - learn: fetch a card and learn it
//   - relearn: learn the last fetched card again
//   - fetch: fetch a card without learning it
//   - checkin: args goal, learned
//   - weather: args weather
//
// Unscripted generator calls fail, so the fallback content is used.
//
// # Assertion Types
//
//   - trace_contains: an action appears with the given outcome
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly N times
//   - final_state: subset match on the garden summary
//   - plant: subset match on one plant
//   - persisted: the stored snapshot equals the engine's
//
// # Golden Files
//
// RunWithGolden compares the trace and final summary against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
