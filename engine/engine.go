package engine

import (
	"github.com/sisu-network/drelay/types"
)

// UpdateHandler receives the engine's latest route snapshot every time the
// execution state of an operation changes.
type UpdateHandler func(route *types.Route)

// Engine is the external routing/execution engine that actually moves assets.
// This service only observes it.
type Engine interface {
	// SubmitForExecution begins async execution of a prepared route. onUpdate
	// is invoked repeatedly with route snapshots until execution finishes.
	SubmitForExecution(route *types.Route, onUpdate UpdateHandler) error

	// GetActiveExecution returns the engine's current snapshot for an
	// operation, or nil if the engine is not executing it.
	GetActiveExecution(operationId string) *types.Route

	// ResumeExecution continues a paused or awaiting-confirmation execution.
	ResumeExecution(route *types.Route, onUpdate UpdateHandler) error

	// StopExecution halts execution best-effort. Stopping an already stopped
	// execution is a no-op.
	StopExecution(route *types.Route) error
}
