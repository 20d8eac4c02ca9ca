/*
Copyright © 2026 Ahmed Coding
*/
package types

// Envelope statuses. A policy escalation (FAILED_RETRY/ROLLBACK) is a
// successful recording of a domain-level failure, so it reports success.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Envelope is the uniform response shape every operation returns to the
// calling agent, whatever capability was invoked.
type Envelope struct {
	Status                string         `json:"status"`
	Observations          map[string]any `json:"observations"`
	Errors                []string       `json:"errors"`
	NextRecommendedAction string         `json:"next_recommended_action"`
}

// Success builds a success envelope with the given payload and guidance.
func Success(observations map[string]any, nextAction string) *Envelope {
	if observations == nil {
		observations = map[string]any{}
	}
	return &Envelope{
		Status:                StatusSuccess,
		Observations:          observations,
		Errors:                []string{},
		NextRecommendedAction: nextAction,
	}
}

// Failure builds a failure envelope. The action string tells the agent
// how to recover; it must never be empty in practice.
func Failure(errs []string, nextAction string) *Envelope {
	if errs == nil {
		errs = []string{}
	}
	return &Envelope{
		Status:                StatusFailure,
		Observations:          map[string]any{},
		Errors:                errs,
		NextRecommendedAction: nextAction,
	}
}
