package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sisu-network/drelay/types"
	"github.com/stretchr/testify/require"
)

func doneRoute(id string) *types.Route {
	return &types.Route{
		OperationId: id,
		FromChainId: 1,
		ToChainId:   137,
		Steps: []*types.Step{
			{Type: "swap", Execution: &types.StepExecution{Status: types.ExecStatusDone}},
		},
	}
}

// newRouterServer fakes the router daemon's JSON-RPC endpoint.
func newRouterServer(t *testing.T, routes map[string]*types.Route) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Id     interface{}     `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.Nil(t, json.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "router_startExecution", "router_resumeExecution", "router_stopExecution":
			result = true

		case "router_getExecution":
			params := make([]string, 0)
			json.Unmarshal(req.Params, &params)
			if len(params) > 0 {
				result = routes[params[0]]
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.Id,
			"result":  result,
		})
	}))
}

func TestRpcEngine_GetActiveExecution(t *testing.T) {
	server := newRouterServer(t, map[string]*types.Route{
		"op-1": doneRoute("op-1"),
	})
	defer server.Close()

	eng := NewRpcEngine(server.URL, time.Millisecond*10)

	route := eng.GetActiveExecution("op-1")
	require.NotNil(t, route)
	require.Equal(t, "op-1", route.OperationId)
	require.Equal(t, int64(137), route.ToChainId)

	require.Nil(t, eng.GetActiveExecution("ghost"))
}

func TestRpcEngine_SubmitAndPoll(t *testing.T) {
	server := newRouterServer(t, map[string]*types.Route{
		"op-1": doneRoute("op-1"),
	})
	defer server.Close()

	eng := NewRpcEngine(server.URL, time.Millisecond*10)
	defer eng.Shutdown()

	updates := make(chan *types.Route, 16)
	err := eng.SubmitForExecution(doneRoute("op-1"), func(route *types.Route) {
		updates <- route
	})
	require.Nil(t, err)

	select {
	case route := <-updates:
		require.Equal(t, "op-1", route.OperationId)
	case <-time.After(time.Second * 2):
		t.Fatal("no update delivered")
	}

	// The snapshot is terminal, so polling winds down and identical
	// snapshots are not re-delivered.
	time.Sleep(time.Millisecond * 100)
	require.Equal(t, 0, len(updates))
}

func TestRpcEngine_StopExecution(t *testing.T) {
	server := newRouterServer(t, map[string]*types.Route{})
	defer server.Close()

	eng := NewRpcEngine(server.URL, time.Millisecond*10)

	require.Nil(t, eng.StopExecution(doneRoute("op-1")))
}

func TestRouteFinished(t *testing.T) {
	require.True(t, routeFinished(doneRoute("op-1")))

	failed := doneRoute("op-1")
	failed.Steps[0].Execution.Status = types.ExecStatusFailed
	require.True(t, routeFinished(failed))

	running := doneRoute("op-1")
	running.Steps[0].Execution.Status = types.ExecStatusStarted
	require.False(t, routeFinished(running))

	notStarted := doneRoute("op-1")
	notStarted.Steps[0].Execution = nil
	require.False(t, routeFinished(notStarted))

	require.False(t, routeFinished(&types.Route{OperationId: "op-1"}))
}
