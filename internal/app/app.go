// Package app is the single source of truth for the operations exposed
// to the agent. Both the CLI and the MCP server call through here, so
// every operation returns the uniform response envelope and no raw
// error ever escapes to a caller.
package app

import (
	"errors"

	"github.com/ahmed-coding/Gravitas-Core/internal/controller"
	"github.com/ahmed-coding/Gravitas-Core/internal/memory"
	"github.com/ahmed-coding/Gravitas-Core/internal/resume"
	"github.com/ahmed-coding/Gravitas-Core/types"
)

// App bundles the store, the controller, and the resume builder behind
// the envelope contract.
type App struct {
	store      *memory.Store
	controller *controller.Controller
	builder    *resume.Builder
}

// Options configures construction beyond the project root.
type Options struct {
	Policy            controller.RetryPolicy
	StrictTransitions bool
}

// New opens (or creates) the store under projectRoot and wires the
// control plane on top of it.
func New(projectRoot string, opts Options) (*App, error) {
	store, err := memory.NewStore(projectRoot)
	if err != nil {
		return nil, err
	}
	ctrl, err := controller.New(store, opts.Policy, opts.StrictTransitions)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &App{
		store:      store,
		controller: ctrl,
		builder:    resume.NewBuilder(store),
	}, nil
}

// Close releases the store handle.
func (a *App) Close() error {
	return a.store.Close()
}

// codedFailure reports a categorized, locally-recovered failure.
func codedFailure(code, message, nextAction string) *types.Envelope {
	return types.Failure([]string{types.NewMCPError(code, message, nil).Error()}, nextAction)
}

// storageFailure reports an I/O-level fault in the store.
func storageFailure(err error, nextAction string) *types.Envelope {
	return types.Failure(
		[]string{types.NewMCPError(types.CodeStorageUnavailable, err.Error(), nil).Error()},
		nextAction,
	)
}

// isNotFound reports whether err is the store's missing-record condition.
func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound)
}
