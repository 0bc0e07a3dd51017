package tracker

import (
	"fmt"
	"time"

	"github.com/sisu-network/drelay/engine"
	"github.com/sisu-network/drelay/types"
	"github.com/sisu-network/lib/log"
)

// ConfirmationHandler asks the user to confirm an action-required transaction.
// It blocks until the user decides. Optional: when no handler is configured
// and auto-confirm is off, an action-required operation fails immediately.
type ConfirmationHandler interface {
	OnConfirmationRequired(operationId string, txRequest *types.TxRequest) (bool, error)
}

// ConfirmationHandlerFunc adapts a plain function to ConfirmationHandler.
type ConfirmationHandlerFunc func(operationId string, txRequest *types.TxRequest) (bool, error)

func (f ConfirmationHandlerFunc) OnConfirmationRequired(operationId string,
	txRequest *types.TxRequest) (bool, error) {
	return f(operationId, txRequest)
}

type confirmOutcome struct {
	confirmed bool
	err       error
}

// confirmCoordinator coordinates user confirmation of an action-required step
// against an optional timeout. The registry's confirmation bit guarantees at
// most one race per operation; the terminal-state guard makes any late
// settlement of the losing branch a no-op.
type confirmCoordinator struct {
	registry    *Registry
	engine      engine.Engine
	handler     ConfirmationHandler
	autoConfirm bool
	timeout     time.Duration

	// resume callback handed to the engine when execution continues.
	onUpdate engine.UpdateHandler
}

// handleActionRequired is invoked by the observer whenever a route snapshot
// contains an action-required step (or the operation was already waiting for
// its transaction details).
func (c *confirmCoordinator) handleActionRequired(id string, route *types.Route) {
	_, process := findActionRequired(route.Steps)

	var txRequest *types.TxRequest
	if process != nil {
		txRequest = process.TxRequest
	}

	if txRequest == nil {
		// The engine knows an action is needed but has not produced the
		// transaction payload yet. Flag it and wait for the next update.
		err := c.registry.Update(id, func(op *types.OperationTracking) {
			op.IsAwaitingConfirmationDetails = true
			op.StatusMessage = "Waiting for transaction details..."
		})
		if err != nil {
			log.Warnf("Cannot flag operation %s as awaiting details, err = %v", id, err)
		}

		return
	}

	if c.autoConfirm {
		if !c.registry.MarkResumeRequested(id) {
			// The same action was already resumed; redelivered snapshots of
			// it must not trigger another resume.
			return
		}

		c.registry.Update(id, func(op *types.OperationTracking) {
			op.IsAwaitingConfirmationDetails = false
			op.StatusMessage = "Transaction auto-confirmed"
		})

		log.Verbose("Auto-confirming transaction for operation ", id)
		if err := c.engine.ResumeExecution(route, c.onUpdate); err != nil {
			c.failTracking(id, fmt.Sprintf("Failed to resume execution: %s", err))
		}

		return
	}

	if c.handler == nil {
		c.failTracking(id, "Operation requires confirmation but no handler is configured.")
		return
	}

	if !c.registry.BeginConfirmation(id) {
		// A race is already in flight, or the operation is gone or terminal.
		return
	}

	c.registry.Update(id, func(op *types.OperationTracking) {
		op.StatusMessage = "Waiting for user confirmation"
	})

	go c.awaitConfirmation(id, route, txRequest)
}

// awaitConfirmation races the handler's decision against the optional timeout
// budget. Exactly one select branch settles the race; the losing branch's
// eventual result lands in a buffered channel and is dropped.
func (c *confirmCoordinator) awaitConfirmation(id string, route *types.Route,
	txRequest *types.TxRequest) {
	defer c.registry.EndConfirmation(id)

	resultCh := make(chan confirmOutcome, 1)
	go func() {
		confirmed, err := c.handler.OnConfirmationRequired(id, txRequest)
		resultCh <- confirmOutcome{confirmed: confirmed, err: err}
	}()

	var timeoutCh <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case outcome := <-resultCh:
		switch {
		case outcome.err != nil:
			c.stopExecution(id, route)
			c.failTracking(id, fmt.Sprintf("Confirmation handler error: %s", outcome.err))

		case !outcome.confirmed:
			c.stopExecution(id, route)
			c.failTracking(id, "Transaction rejected by user.")

		default:
			// Confirmed. Execution resumes on its own; the next engine
			// update re-derives the status.
			log.Verbose("Transaction confirmed by user for operation ", id)
		}

	case <-timeoutCh:
		c.failTracking(id, fmt.Sprintf("Confirmation timed out after %dms",
			c.timeout.Milliseconds()))
		c.stopExecution(id, route)
	}
}

func (c *confirmCoordinator) failTracking(id string, message string) {
	err := c.registry.Update(id, func(op *types.OperationTracking) {
		op.Status = types.OpStatusFailed
		op.Error = message
		op.StatusMessage = message
	})
	if err != nil {
		log.Warnf("Cannot fail tracking for operation %s, err = %v", id, err)
	}
}

func (c *confirmCoordinator) stopExecution(id string, route *types.Route) {
	if c.engine == nil {
		return
	}

	if route == nil {
		route = c.registry.Route(id)
	}
	if route == nil {
		return
	}

	if err := c.engine.StopExecution(route); err != nil {
		// Cancellation bookkeeping is never blocked by a failing stop call.
		log.Errorf("Failed to stop execution for operation %s, err = %v", id, err)
	}
}
