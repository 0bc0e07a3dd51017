package engine

import (
	"github.com/sisu-network/drelay/types"
)

type MockEngine struct {
	SubmitForExecutionFunc func(route *types.Route, onUpdate UpdateHandler) error
	GetActiveExecutionFunc func(operationId string) *types.Route
	ResumeExecutionFunc    func(route *types.Route, onUpdate UpdateHandler) error
	StopExecutionFunc      func(route *types.Route) error
}

func (mock *MockEngine) SubmitForExecution(route *types.Route, onUpdate UpdateHandler) error {
	if mock.SubmitForExecutionFunc != nil {
		return mock.SubmitForExecutionFunc(route, onUpdate)
	}

	return nil
}

func (mock *MockEngine) GetActiveExecution(operationId string) *types.Route {
	if mock.GetActiveExecutionFunc != nil {
		return mock.GetActiveExecutionFunc(operationId)
	}

	return nil
}

func (mock *MockEngine) ResumeExecution(route *types.Route, onUpdate UpdateHandler) error {
	if mock.ResumeExecutionFunc != nil {
		return mock.ResumeExecutionFunc(route, onUpdate)
	}

	return nil
}

func (mock *MockEngine) StopExecution(route *types.Route) error {
	if mock.StopExecutionFunc != nil {
		return mock.StopExecutionFunc(route)
	}

	return nil
}
