package tracker

import (
	"github.com/sisu-network/drelay/types"
	"github.com/sisu-network/drelay/utils"
	"github.com/sisu-network/lib/log"
)

// OnRouteUpdate is the entry point the execution engine invokes on every
// progress event. It stores the snapshot, re-derives the overall status and
// delegates action-required steps to the confirmation coordinator.
func (t *Tracker) OnRouteUpdate(route *types.Route) {
	if route == nil || route.OperationId == "" {
		log.Warn("Received a route update without an operation id, dropping it")
		return
	}

	id := route.OperationId
	newStatus := deriveStatus(route.Steps)
	if newStatus == types.OpStatusUnknown {
		log.Warnf("Cannot derive a status for operation %s from the engine snapshot", id)
	}

	t.registry.SetRoute(id, route)

	err := t.registry.Update(id, func(op *types.OperationTracking) {
		op.Status = newStatus
		t.applyRouteDetails(op, route, newStatus)
	})
	if err != nil {
		log.Warnf("Dropping update for untracked operation %s", id)
		return
	}

	tracking, ok := t.registry.Get(id)
	if !ok {
		return
	}

	t.journalStatus(&tracking)

	if tracking.Status == types.OpStatusActionRequired ||
		tracking.IsAwaitingConfirmationDetails {
		t.confirmer.handleActionRequired(id, route)
		return
	}

	// Execution moved past the action, so a later action-required step may
	// be auto-confirmed again.
	t.registry.ClearResumeRequested(id)
}

// applyRouteDetails populates the opportunistic fields of a tracking record
// from whatever the snapshot carries. It runs under the operation's lock and
// never sees a terminal record; the registry drops the whole mutation then.
func (t *Tracker) applyRouteDetails(op *types.OperationTracking, route *types.Route,
	status types.OperationStatus) {
	if tx := findSourceTx(route); tx != nil {
		t.fillExplorerUrl(tx)
		op.SourceTx = tx
	}
	if tx := findDestinationTx(route); tx != nil {
		t.fillExplorerUrl(tx)
		op.DestinationTx = tx
	}

	switch status {
	case types.OpStatusCompleted:
		op.ReceivedAmount = receivedAmount(route)
		op.StatusMessage = "Transfer completed"

	case types.OpStatusFailed:
		op.Error = failureMessage(route)
		op.StatusMessage = op.Error

	case types.OpStatusActionRequired:
		// The coordinator refines this message once it knows whether the
		// transaction payload is available.
		op.StatusMessage = "Waiting for user confirmation"

	case types.OpStatusPending:
		op.StatusMessage = "Transfer in progress"

	default:
		op.StatusMessage = "Operation status is unknown"
	}
}

// findSourceTx returns the first reported transaction on the source chain,
// falling back to the first transaction of the first step.
func findSourceTx(route *types.Route) *types.TxInfo {
	for _, step := range route.Steps {
		if step.Execution == nil {
			continue
		}

		for _, process := range step.Execution.Processes {
			if process.TxHash == "" {
				continue
			}

			if process.ChainId == route.FromChainId {
				return txInfo(process)
			}
		}
	}

	if len(route.Steps) > 0 && route.Steps[0].Execution != nil {
		for _, process := range route.Steps[0].Execution.Processes {
			if process.TxHash != "" {
				return txInfo(process)
			}
		}
	}

	return nil
}

// findDestinationTx prefers the most recent process on the destination chain,
// with a final fallback of the last process of the last step. Any remaining
// ambiguity means no hash yet.
func findDestinationTx(route *types.Route) *types.TxInfo {
	for i := len(route.Steps) - 1; i >= 0; i-- {
		step := route.Steps[i]
		if step.Execution == nil {
			continue
		}

		for j := len(step.Execution.Processes) - 1; j >= 0; j-- {
			process := step.Execution.Processes[j]
			if process.TxHash != "" && process.ChainId == route.ToChainId {
				return txInfo(process)
			}
		}
	}

	if len(route.Steps) > 0 {
		last := route.Steps[len(route.Steps)-1]
		if last.Execution != nil && len(last.Execution.Processes) > 0 {
			process := last.Execution.Processes[len(last.Execution.Processes)-1]
			if process.TxHash != "" {
				return txInfo(process)
			}
		}
	}

	return nil
}

func txInfo(process *types.Process) *types.TxInfo {
	return &types.TxInfo{
		Hash:        process.TxHash,
		ChainId:     process.ChainId,
		ExplorerUrl: process.ExplorerLink,
	}
}

// fillExplorerUrl falls back to the configured chain explorer when the engine
// did not send a link.
func (t *Tracker) fillExplorerUrl(tx *types.TxInfo) {
	if tx.ExplorerUrl != "" {
		return
	}

	for _, chain := range t.cfg.Chains {
		if chain.ChainId == tx.ChainId {
			tx.ExplorerUrl = utils.ExplorerTxUrl(chain.ExplorerUrl, tx.Hash)
			return
		}
	}
}

// receivedAmount reads the destination amount reported by the last executed
// step.
func receivedAmount(route *types.Route) string {
	for i := len(route.Steps) - 1; i >= 0; i-- {
		step := route.Steps[i]
		if step.Execution != nil && step.Execution.ToAmount != "" {
			return step.Execution.ToAmount
		}
	}

	return ""
}

// failureMessage surfaces the underlying process error of the first failed
// step.
func failureMessage(route *types.Route) string {
	for _, step := range route.Steps {
		if coarseStepStatus(step) != types.OpStatusFailed {
			continue
		}

		for _, process := range step.Execution.Processes {
			if process.Error != "" {
				return process.Error
			}
		}

		return "Step execution failed"
	}

	return "Step execution failed"
}
