package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sisu-network/drelay/types"
	"github.com/sisu-network/lib/log"
	"github.com/ybbus/jsonrpc/v3"
	"go.uber.org/atomic"
)

const DefaultPollInterval = time.Second * 2

// RpcEngine talks to the router daemon over JSON-RPC. The daemon has no push
// channel, so each submitted operation gets a polling goroutine that turns
// snapshot changes into onUpdate invocations.
type RpcEngine struct {
	client       jsonrpc.RPCClient
	pollInterval time.Duration

	lock    sync.Mutex
	stopChs map[string]chan struct{}

	stopped atomic.Bool
}

func NewRpcEngine(url string, pollInterval time.Duration) *RpcEngine {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &RpcEngine{
		client:       jsonrpc.NewClient(url),
		pollInterval: pollInterval,
		stopChs:      make(map[string]chan struct{}),
	}
}

func (e *RpcEngine) SubmitForExecution(route *types.Route, onUpdate UpdateHandler) error {
	_, err := e.client.Call(context.Background(), "router_startExecution", route)
	if err != nil {
		return err
	}

	e.startPolling(route.OperationId, onUpdate)

	return nil
}

func (e *RpcEngine) GetActiveExecution(operationId string) *types.Route {
	route := new(types.Route)
	err := e.client.CallFor(context.Background(), route, "router_getExecution", operationId)
	if err != nil {
		log.Verbose("No active execution for operation ", operationId, ", err = ", err)
		return nil
	}

	if route.OperationId == "" {
		return nil
	}

	return route
}

func (e *RpcEngine) ResumeExecution(route *types.Route, onUpdate UpdateHandler) error {
	_, err := e.client.Call(context.Background(), "router_resumeExecution", route)
	if err != nil {
		return err
	}

	e.startPolling(route.OperationId, onUpdate)

	return nil
}

func (e *RpcEngine) StopExecution(route *types.Route) error {
	e.stopPolling(route.OperationId)

	_, err := e.client.Call(context.Background(), "router_stopExecution", route.OperationId)

	return err
}

// Shutdown stops every polling goroutine. Used on process exit.
func (e *RpcEngine) Shutdown() {
	e.stopped.Store(true)

	e.lock.Lock()
	defer e.lock.Unlock()

	for id, ch := range e.stopChs {
		close(ch)
		delete(e.stopChs, id)
	}
}

func (e *RpcEngine) startPolling(operationId string, onUpdate UpdateHandler) {
	if e.stopped.Load() {
		return
	}

	e.lock.Lock()
	if _, ok := e.stopChs[operationId]; ok {
		// Already polling this operation.
		e.lock.Unlock()
		return
	}

	stopCh := make(chan struct{})
	e.stopChs[operationId] = stopCh
	e.lock.Unlock()

	go e.poll(operationId, onUpdate, stopCh)
}

func (e *RpcEngine) stopPolling(operationId string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if ch, ok := e.stopChs[operationId]; ok {
		close(ch)
		delete(e.stopChs, operationId)
	}
}

func (e *RpcEngine) poll(operationId string, onUpdate UpdateHandler, stopCh chan struct{}) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	var lastSnapshot string

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.C:
			route := e.GetActiveExecution(operationId)
			if route == nil {
				continue
			}

			bz, err := json.Marshal(route)
			if err != nil {
				log.Error("Failed to marshal route snapshot, err = ", err)
				continue
			}

			if string(bz) == lastSnapshot {
				continue
			}
			lastSnapshot = string(bz)

			onUpdate(route)

			if routeFinished(route) {
				e.stopPolling(operationId)
				return
			}
		}
	}
}

// routeFinished reports whether the engine has nothing left to execute, so
// polling can stop. The tracker derives the authoritative status itself.
func routeFinished(route *types.Route) bool {
	if len(route.Steps) == 0 {
		return false
	}

	allDone := true
	for _, step := range route.Steps {
		if step.Execution == nil {
			allDone = false
			continue
		}

		switch step.Execution.Status {
		case types.ExecStatusFailed, types.ExecStatusCancelled, types.ExecStatusNotFound:
			return true
		case types.ExecStatusDone:
		default:
			allDone = false
		}
	}

	return allDone
}
