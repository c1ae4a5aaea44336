package harness

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq      int64                  `json:"seq"`
	Action   string                 `json:"action"`
	Args     map[string]interface{} `json:"args,omitempty"`
	Outcome  string                 `json:"outcome"`
	Result   map[string]interface{} `json:"result,omitempty"`
	Revision int64                  `json:"revision"`
}

// Step outcomes.
const (
	OutcomeApplied        = "applied"
	OutcomeInsufficient   = "insufficient_sunlight"
	OutcomeAlreadyLearned = "already_learned"
	OutcomeError          = "error"
)

// PlantSummary is one plant in a StateSummary.
type PlantSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Stage           string `json:"stage"`
	GrowthPoints    int    `json:"growth_points"`
	FlowerLanguages int    `json:"flower_languages"`
}

// StateSummary is the part of the final snapshot scenarios assert on.
type StateSummary struct {
	Sunlight     int            `json:"sunlight"`
	Weather      string         `json:"weather"`
	TotalLearned int            `json:"total_learned"`
	PlantCount   int            `json:"plant_count"`
	Plants       []PlantSummary `json:"plants"`
	CheckIns     int            `json:"checkins"`
	Collection   int            `json:"collection"`
	Flowers      int            `json:"flowers"`
	Revision     int64          `json:"revision"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the garden after the flow.
	State StateSummary `json:"state"`

	// Persisted reports whether the stored snapshot matched the engine's.
	Persisted bool `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
