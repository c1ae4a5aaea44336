package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Index   int
	Type    string
	Message string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion[%d] %s: %s", e.Index, e.Type, e.Message)
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		case AssertPlant:
			err = assertPlant(result.State, a)
		case AssertPersisted:
			if !result.Persisted {
				err = fmt.Errorf("stored snapshot does not match engine state")
			}
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, (&AssertionError{Index: i, Type: a.Type, Message: err.Error()}).Error())
		}
	}
	return errs
}

func matchesEvent(ev TraceEvent, a Assertion) bool {
	return ev.Action == a.Action && (a.Outcome == "" || ev.Outcome == a.Outcome)
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if matchesEvent(ev, a) {
			return nil
		}
	}
	if a.Outcome != "" {
		return fmt.Errorf("no %s step with outcome %s", a.Action, a.Outcome)
	}
	return fmt.Errorf("no %s step in trace", a.Action)
}

// assertTraceOrder checks that the actions occur in order, not necessarily
// adjacent.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Actions) && ev.Action == a.Actions[next] {
			next++
		}
	}
	if next < len(a.Actions) {
		return fmt.Errorf("expected %v in order, missing %q after position %d", a.Actions, a.Actions[next], next)
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if matchesEvent(ev, a) {
			n++
		}
	}
	if n != a.Count {
		return fmt.Errorf("expected %d %s steps, found %d", a.Count, a.Action, n)
	}
	return nil
}

func assertFinalState(state StateSummary, a Assertion) error {
	actual, err := toMap(state)
	if err != nil {
		return err
	}
	return subsetMatch(actual, a.Expect)
}

func assertPlant(state StateSummary, a Assertion) error {
	for _, p := range state.Plants {
		if p.ID != a.Plant {
			continue
		}
		actual, err := toMap(p)
		if err != nil {
			return err
		}
		return subsetMatch(actual, a.Expect)
	}
	return fmt.Errorf("plant %q not owned", a.Plant)
}

// checkExpect compares one trace event to an expect clause.
func checkExpect(exp *ExpectClause, ev TraceEvent) []string {
	var msgs []string
	if ev.Outcome != exp.Outcome {
		msgs = append(msgs, fmt.Sprintf("expected outcome %s, got %s", exp.Outcome, ev.Outcome))
	}
	if exp.Error != "" {
		if code, _ := ev.Result["code"].(string); code != exp.Error {
			msgs = append(msgs, fmt.Sprintf("expected error %s, got %q", exp.Error, code))
		}
	}
	if len(exp.Result) > 0 {
		if err := subsetMatch(ev.Result, exp.Result); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// subsetMatch checks every expected key against actual. Keys are visited in
// sorted order so failure messages are stable.
func subsetMatch(actual, expected map[string]interface{}) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			return fmt.Errorf("field %q missing", k)
		}
		if !valuesEqual(got, expected[k]) {
			return fmt.Errorf("field %q: expected %v, got %v", k, expected[k], got)
		}
	}
	return nil
}

// valuesEqual compares through JSON so YAML ints, Go ints and decoded
// float64s of the same number are equal.
func valuesEqual(actual, expected interface{}) bool {
	a, errA := json.Marshal(actual)
	b, errB := json.Marshal(expected)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return m, nil
}
