package harness

// StepResult records one verification step of a scenario replay: the
// untampered check first, then one step per tamper.
type StepResult struct {
	// Name is "expect" for the untampered replay, the tamper name
	// otherwise.
	Name string `json:"name"`

	// WantStatus is the verification status the scenario requires.
	WantStatus string `json:"want_status"`

	// GotStatus is the status the verifier actually returned.
	GotStatus string `json:"got_status"`

	// Pass is true when the statuses agree.
	Pass bool `json:"pass"`
}

// Result is the outcome of replaying a scenario.
type Result struct {
	// Pass indicates overall success: the fused triple matched, the
	// untampered replay verified, and every tamper produced its
	// expected status.
	Pass bool `json:"pass"`

	// Seal is the conformance seal the fusion produced.
	Seal string `json:"seal"`

	// JudgmentID is the content-addressed id of the fused judgment.
	JudgmentID string `json:"judgment_id"`

	// Steps lists every verification performed, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records a verification step. A status mismatch fails the
// result and is also recorded as an error for the summary.
func (r *Result) AddStep(name, want, got string) {
	pass := want == got
	r.Steps = append(r.Steps, StepResult{
		Name:       name,
		WantStatus: want,
		GotStatus:  got,
		Pass:       pass,
	})
	if !pass {
		r.AddError((&AssertionError{
			Step:     name,
			Expected: "verification status " + want,
			Actual:   "verification status " + got,
		}).Error())
	}
}
