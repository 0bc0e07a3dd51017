package tracker

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sisu-network/drelay/config"
	"github.com/sisu-network/drelay/database"
	"github.com/sisu-network/drelay/engine"
	"github.com/sisu-network/drelay/types"
	"github.com/sisu-network/lib/log"
)

const (
	CancelReasonUser    = "user"
	CancelReasonTimeout = "timeout"
)

// Tracker is the operation facade. It registers prepared routes with the
// execution engine, derives one coherent status per operation from the
// engine's progress callbacks and coordinates confirmation, cancellation and
// timeouts. All state lives in the registry; the tracker never loses or
// double-processes an operation.
type Tracker struct {
	cfg       config.Drelay
	registry  *Registry
	engine    engine.Engine
	confirmer *confirmCoordinator
	db        database.Database
}

func NewTracker(cfg config.Drelay, eng engine.Engine, handler ConfirmationHandler,
	db database.Database) *Tracker {
	t := &Tracker{
		cfg:      cfg,
		registry: NewRegistry(),
		engine:   eng,
		db:       db,
	}

	t.confirmer = &confirmCoordinator{
		registry:    t.registry,
		engine:      eng,
		handler:     handler,
		autoConfirm: cfg.AutoConfirmTransactions,
		timeout:     cfg.ConfirmationTimeout(),
		onUpdate:    t.OnRouteUpdate,
	}

	return t
}

// ExecuteOperation registers the quote's route and hands it to the engine.
// Preparation failures come back as an immediate FAILED result; usage errors
// (no engine, no route) as UNKNOWN. Callers never have to catch anything.
func (t *Tracker) ExecuteOperation(quote *types.Quote) *types.OperationResult {
	if quote == nil || quote.Route == nil {
		return unknownResult("", "quote has no route")
	}

	if t.engine == nil {
		return unknownResult(quote.Route.OperationId, "no execution engine configured")
	}

	route := quote.Route
	if route.OperationId == "" {
		route.OperationId = uuid.NewString()
	}
	id := route.OperationId

	if err := t.registry.Create(id, route.Intent()); err != nil {
		// Submitting a known operation twice returns its current state.
		log.Warnf("Operation %s is already tracked, returning its current state", id)
		return t.registry.PublicResult(id)
	}

	t.registry.SetRoute(id, route)

	if tracking, ok := t.registry.Get(id); ok && t.db != nil {
		t.db.RecordOperation(&tracking)
	}

	log.Infof("Submitting operation %s for execution, %d -> %d", id,
		route.FromChainId, route.ToChainId)

	if err := t.engine.SubmitForExecution(route, t.OnRouteUpdate); err != nil {
		t.failOperation(id, fmt.Sprintf("Failed to start execution: %s", err))
	}

	return t.registry.PublicResult(id)
}

// GetOperationStatus returns the public projection for an operation. Unseen
// ids yield an UNKNOWN result, not an error.
func (t *Tracker) GetOperationStatus(operationId string) *types.OperationResult {
	return t.registry.PublicResult(operationId)
}

// CancelOperation stops execution best-effort and force-fails the tracking
// record. Idempotent: canceling a terminal operation returns its existing
// result without touching the engine again, and concurrent cancels of the
// same operation issue a single stop call between them.
func (t *Tracker) CancelOperation(operationId string, reason string) *types.OperationResult {
	if !t.registry.BeginCancel(operationId) {
		return t.registry.PublicResult(operationId)
	}

	var stopErr error
	if t.engine != nil {
		route := t.registry.Route(operationId)
		if route == nil {
			route = t.engine.GetActiveExecution(operationId)
		}

		if route != nil {
			stopErr = t.engine.StopExecution(route)
		}
	}
	if stopErr != nil {
		log.Errorf("Failed to stop execution for operation %s, err = %v", operationId, stopErr)
	}

	t.failOperation(operationId, cancelMessage(reason, stopErr))

	return t.registry.PublicResult(operationId)
}

// ResumeOperation asks the engine to continue a paused execution, preferring
// the engine's own active snapshot over the last one we stored.
func (t *Tracker) ResumeOperation(operationId string) *types.OperationResult {
	if t.engine == nil {
		return unknownResult(operationId, "no execution engine configured")
	}

	route := t.engine.GetActiveExecution(operationId)
	if route == nil {
		route = t.registry.Route(operationId)
	}

	if route == nil {
		log.Warnf("No route snapshot to resume operation %s", operationId)
		return t.registry.PublicResult(operationId)
	}

	if err := t.engine.ResumeExecution(route, t.OnRouteUpdate); err != nil {
		t.failOperation(operationId, fmt.Sprintf("Failed to resume execution: %s", err))
	}

	return t.registry.PublicResult(operationId)
}

func cancelMessage(reason string, stopErr error) string {
	if reason == CancelReasonTimeout {
		if stopErr != nil {
			return "Operation timed out and could not be canceled"
		}

		return "Operation timed out and was canceled"
	}

	return "Operation canceled by user"
}

func (t *Tracker) failOperation(id string, message string) {
	err := t.registry.Update(id, func(op *types.OperationTracking) {
		op.Status = types.OpStatusFailed
		op.Error = message
		op.StatusMessage = message
	})
	if err != nil {
		log.Warnf("Cannot fail operation %s, err = %v", id, err)
		return
	}

	if tracking, ok := t.registry.Get(id); ok {
		t.journalStatus(&tracking)
	}
}

func (t *Tracker) journalStatus(tracking *types.OperationTracking) {
	if t.db == nil {
		return
	}

	t.db.RecordStatusUpdate(tracking.OperationId, tracking.Status, tracking.StatusMessage)
}

func unknownResult(id string, message string) *types.OperationResult {
	return &types.OperationResult{
		OperationId: id,
		Status:      types.OpStatusUnknown,
		Error:       message,
	}
}
