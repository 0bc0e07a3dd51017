package database

import "github.com/sisu-network/drelay/types"

type MockDb struct {
	InitFunc               func() error
	CloseFunc              func() error
	RecordOperationFunc    func(op *types.OperationTracking)
	RecordStatusUpdateFunc func(id string, status types.OperationStatus, message string)
	LoadStatusHistoryFunc  func(id string) ([]*StatusRecord, error)
}

func (mock *MockDb) Init() error {
	if mock.InitFunc != nil {
		return mock.InitFunc()
	}

	return nil
}

func (mock *MockDb) Close() error {
	if mock.CloseFunc != nil {
		return mock.CloseFunc()
	}

	return nil
}

func (mock *MockDb) RecordOperation(op *types.OperationTracking) {
	if mock.RecordOperationFunc != nil {
		mock.RecordOperationFunc(op)
	}
}

func (mock *MockDb) RecordStatusUpdate(id string, status types.OperationStatus, message string) {
	if mock.RecordStatusUpdateFunc != nil {
		mock.RecordStatusUpdateFunc(id, status, message)
	}
}

func (mock *MockDb) LoadStatusHistory(id string) ([]*StatusRecord, error) {
	if mock.LoadStatusHistoryFunc != nil {
		return mock.LoadStatusHistoryFunc(id)
	}

	return nil, nil
}
