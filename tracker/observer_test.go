package tracker

import (
	"testing"

	"github.com/sisu-network/drelay/config"
	"github.com/sisu-network/drelay/engine"
	"github.com/sisu-network/drelay/types"
	"github.com/stretchr/testify/require"
)

func newTestRoute(id string, steps ...*types.Step) *types.Route {
	return &types.Route{
		OperationId: id,
		FromChainId: 1,
		ToChainId:   137,
		FromToken:   "USDC",
		ToToken:     "USDC",
		FromAmount:  "1000000",
		FromAddress: "0xfrom",
		ToAddress:   "0xto",
		Steps:       steps,
	}
}

func newTestTracker(cfg config.Drelay, eng engine.Engine,
	handler ConfirmationHandler) *Tracker {
	return NewTracker(cfg, eng, handler, nil)
}

// startOperation registers a route with the tracker through the facade.
func startOperation(t *testing.T, tr *Tracker, route *types.Route) {
	result := tr.ExecuteOperation(&types.Quote{Id: "q-" + route.OperationId, Route: route})
	require.Equal(t, types.OpStatusPending, result.Status)
}

func TestObserver_CompletedOperation(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	update := newTestRoute("op-1",
		&types.Step{
			Type: "swap",
			Execution: &types.StepExecution{
				Status: types.ExecStatusDone,
				Processes: []*types.Process{
					{Type: "SWAP", Status: types.ExecStatusDone, ChainId: 1,
						TxHash: "0xsrc", ExplorerLink: "https://scan/0xsrc"},
				},
			},
		},
		&types.Step{
			Type: "cross",
			Execution: &types.StepExecution{
				Status:   types.ExecStatusDone,
				ToAmount: "995000",
				Processes: []*types.Process{
					{Type: "CROSS_CHAIN", Status: types.ExecStatusDone, ChainId: 1, TxHash: "0xbridge"},
					{Type: "RECEIVING_CHAIN", Status: types.ExecStatusDone, ChainId: 137,
						TxHash: "0xdst", ExplorerLink: "https://polygonscan/0xdst"},
				},
			},
		},
	)

	tr.OnRouteUpdate(update)

	result := tr.GetOperationStatus("op-1")
	require.Equal(t, types.OpStatusCompleted, result.Status)
	require.Equal(t, "995000", result.ReceivedAmount)
	require.Equal(t, "Transfer completed", result.StatusMessage)

	require.NotNil(t, result.SourceTx)
	require.Equal(t, "0xsrc", result.SourceTx.Hash)
	require.Equal(t, int64(1), result.SourceTx.ChainId)

	require.NotNil(t, result.DestinationTx)
	require.Equal(t, "0xdst", result.DestinationTx.Hash)
	require.Equal(t, int64(137), result.DestinationTx.ChainId)
}

func TestObserver_DestinationTxFallback(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	// No process reports the destination chain id; the last process of the
	// last step wins.
	update := newTestRoute("op-1",
		&types.Step{
			Type: "cross",
			Execution: &types.StepExecution{
				Status: types.ExecStatusStarted,
				Processes: []*types.Process{
					{Type: "CROSS_CHAIN", Status: types.ExecStatusDone, ChainId: 1, TxHash: "0xonly"},
				},
			},
		},
	)

	tr.OnRouteUpdate(update)

	result := tr.GetOperationStatus("op-1")
	require.Equal(t, types.OpStatusPending, result.Status)
	require.NotNil(t, result.DestinationTx)
	require.Equal(t, "0xonly", result.DestinationTx.Hash)
}

func TestObserver_NoHashYet(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	tr.OnRouteUpdate(newTestRoute("op-1", stepWithStatus(types.ExecStatusStarted)))

	result := tr.GetOperationStatus("op-1")
	require.Nil(t, result.SourceTx)
	require.Nil(t, result.DestinationTx)
	require.Equal(t, "Transfer in progress", result.StatusMessage)
}

func TestObserver_FailureSurfacesProcessError(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	update := newTestRoute("op-1",
		&types.Step{
			Type: "swap",
			Execution: &types.StepExecution{
				Status: types.ExecStatusFailed,
				Processes: []*types.Process{
					{Type: "SWAP", Status: types.ExecStatusFailed, Error: "insufficient liquidity"},
				},
			},
		},
	)

	tr.OnRouteUpdate(update)

	result := tr.GetOperationStatus("op-1")
	require.Equal(t, types.OpStatusFailed, result.Status)
	require.Equal(t, "insufficient liquidity", result.Error)
	require.NotEmpty(t, result.StatusMessage)
}

func TestObserver_TerminalStateGuard(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	tr.CancelOperation("op-1", CancelReasonUser)

	// A healthy update arriving after cancellation must not revive the
	// operation or dress it up as a successful transfer.
	done := newTestRoute("op-1",
		stepWithStatus(types.ExecStatusDone), stepWithStatus(types.ExecStatusDone))
	done.Steps[1].Execution.ToAmount = "995000"
	tr.OnRouteUpdate(done)

	result := tr.GetOperationStatus("op-1")
	require.Equal(t, types.OpStatusFailed, result.Status)
	require.Equal(t, "Operation canceled by user", result.Error)
	require.Equal(t, "Operation canceled by user", result.StatusMessage)
	require.Empty(t, result.ReceivedAmount)
}

func TestObserver_UntrackedOperation(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)

	// Updates for operations we never registered are dropped, not tracked.
	tr.OnRouteUpdate(newTestRoute("ghost", stepWithStatus(types.ExecStatusDone)))

	result := tr.GetOperationStatus("ghost")
	require.Equal(t, types.OpStatusUnknown, result.Status)
	require.Equal(t, "operation not found", result.Error)
}

func TestObserver_UnknownRawStatus(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	tr.OnRouteUpdate(newTestRoute("op-1", stepWithStatus("WEIRD_NEW_STATE")))

	result := tr.GetOperationStatus("op-1")
	require.Equal(t, types.OpStatusUnknown, result.Status)
	require.Equal(t, "Operation status is unknown", result.StatusMessage)
}

func TestObserver_IdempotentRedelivery(t *testing.T) {
	tr := newTestTracker(config.Drelay{}, &engine.MockEngine{}, nil)
	startOperation(t, tr, newTestRoute("op-1"))

	update := newTestRoute("op-1",
		stepWithStatus(types.ExecStatusDone), stepWithStatus(types.ExecStatusStarted))

	tr.OnRouteUpdate(update)
	first := tr.GetOperationStatus("op-1")

	tr.OnRouteUpdate(update)
	second := tr.GetOperationStatus("op-1")

	require.Equal(t, first, second)
}
