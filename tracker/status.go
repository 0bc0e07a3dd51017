package tracker

import (
	"github.com/sisu-network/drelay/types"
)

// coarseStepStatus maps one step's raw execution status to a coarse operation
// status. A step the engine has not materialized an execution for is PENDING.
func coarseStepStatus(step *types.Step) types.OperationStatus {
	if step == nil || step.Execution == nil {
		return types.OpStatusPending
	}

	switch step.Execution.Status {
	case types.ExecStatusPending, types.ExecStatusStarted, "":
		return types.OpStatusPending
	case types.ExecStatusActionRequired:
		return types.OpStatusActionRequired
	case types.ExecStatusDone:
		return types.OpStatusCompleted
	case types.ExecStatusFailed, types.ExecStatusCancelled, types.ExecStatusNotFound:
		return types.OpStatusFailed
	default:
		return types.OpStatusUnknown
	}
}

// deriveStatus folds the step statuses of a route snapshot into one overall
// operation status. Priority order: FAILED beats everything, ACTION_REQUIRED
// beats progress, COMPLETED requires every step to have started and finished.
func deriveStatus(steps []*types.Step) types.OperationStatus {
	if len(steps) == 0 {
		// The engine has not materialized any step yet.
		return types.OpStatusPending
	}

	actionRequired := false
	pending := false
	allDone := true

	for _, step := range steps {
		switch coarseStepStatus(step) {
		case types.OpStatusFailed:
			// Failure always wins, even if a later step looks fine.
			return types.OpStatusFailed

		case types.OpStatusActionRequired:
			actionRequired = true
			allDone = false

		case types.OpStatusPending:
			pending = true
			allDone = false

		case types.OpStatusCompleted:
			// The step both started and finished.

		default:
			allDone = false
		}
	}

	if actionRequired {
		return types.OpStatusActionRequired
	}

	if allDone {
		return types.OpStatusCompleted
	}

	if pending {
		return types.OpStatusPending
	}

	return types.OpStatusUnknown
}

// findActionRequired locates the first action-required step and, within it,
// the process carrying the action. The process may not have produced its
// transaction payload yet.
func findActionRequired(steps []*types.Step) (*types.Step, *types.Process) {
	for _, step := range steps {
		if coarseStepStatus(step) != types.OpStatusActionRequired {
			continue
		}

		for _, process := range step.Execution.Processes {
			if process.Status == types.ExecStatusActionRequired {
				return step, process
			}
		}

		return step, nil
	}

	return nil, nil
}
