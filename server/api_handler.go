package server

import (
	"github.com/sisu-network/drelay/quote"
	"github.com/sisu-network/drelay/tracker"
	"github.com/sisu-network/drelay/types"
)

// ApiHandler exposes the operation facade over JSON-RPC.
type ApiHandler struct {
	tracker *tracker.Tracker
	quotes  quote.Provider
}

func NewApi(t *tracker.Tracker, quotes quote.Provider) *ApiHandler {
	return &ApiHandler{
		tracker: t,
		quotes:  quotes,
	}
}

// Empty function for checking health only.
func (api *ApiHandler) CheckHealth() {
}

func (api *ApiHandler) GetQuote(req *types.QuoteRequest) (*types.Quote, error) {
	return api.quotes.GetQuote(req)
}

func (api *ApiHandler) ExecuteOperation(q *types.Quote) *types.OperationResult {
	return api.tracker.ExecuteOperation(q)
}

func (api *ApiHandler) GetOperationStatus(operationId string) *types.OperationResult {
	return api.tracker.GetOperationStatus(operationId)
}

func (api *ApiHandler) CancelOperation(operationId string) *types.OperationResult {
	return api.tracker.CancelOperation(operationId, tracker.CancelReasonUser)
}

func (api *ApiHandler) ResumeOperation(operationId string) *types.OperationResult {
	return api.tracker.ResumeOperation(operationId)
}
