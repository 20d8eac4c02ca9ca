package controller

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RetryPolicy bounds how long the agent may keep hammering a failing
// step before it is forced to change strategy.
type RetryPolicy struct {
	// MaxRetriesPerStep is the retry budget for a single step.
	MaxRetriesPerStep int `mapstructure:"max_retries_per_step" json:"max_retries_per_step" validate:"gte=1"`
	// IdenticalFailureThreshold is the number of consecutive same-reason
	// failures that force a rollback regardless of remaining budget.
	IdenticalFailureThreshold int `mapstructure:"identical_failure_threshold" json:"identical_failure_threshold" validate:"gte=1"`
	// HardStopOnRepeatedFailure makes the identical-failure rollback
	// mandatory rather than advisory.
	HardStopOnRepeatedFailure bool `mapstructure:"hard_stop_on_repeated_failure" json:"hard_stop_on_repeated_failure"`
}

// DefaultPolicy returns the policy used when configuration provides none.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetriesPerStep:         3,
		IdenticalFailureThreshold: 2,
		HardStopOnRepeatedFailure: true,
	}
}

// Validate rejects policies that would disable escalation entirely.
func (p RetryPolicy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}
	return nil
}
