package types

// Raw execution statuses reported by the routing engine for steps and
// processes. The engine owns these values; we only map them.
const (
	ExecStatusPending        = "PENDING"
	ExecStatusStarted        = "STARTED"
	ExecStatusActionRequired = "ACTION_REQUIRED"
	ExecStatusDone           = "DONE"
	ExecStatusFailed         = "FAILED"
	ExecStatusCancelled      = "CANCELLED"
	ExecStatusNotFound       = "NOT_FOUND"
)

// TxRequest is the transaction payload the engine wants signed/submitted
// before an action-required step can proceed.
type TxRequest struct {
	ChainId  int64  `json:"chain_id"`
	To       string `json:"to"`
	Data     string `json:"data,omitempty"`
	Value    string `json:"value,omitempty"`
	GasLimit string `json:"gas_limit,omitempty"`
}

// Process is one sub-unit of work within a step: an approval, a swap leg,
// a cross-chain leg or a receiving-chain confirmation.
type Process struct {
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	ChainId      int64      `json:"chain_id,omitempty"`
	TxHash       string     `json:"tx_hash,omitempty"`
	ExplorerLink string     `json:"explorer_link,omitempty"`
	Error        string     `json:"error,omitempty"`
	TxRequest    *TxRequest `json:"tx_request,omitempty"`
}

// StepExecution is the engine's execution state for one step. It is nil on
// a Step the engine has not started yet.
type StepExecution struct {
	Status    string     `json:"status"`
	Processes []*Process `json:"processes,omitempty"`
	ToAmount  string     `json:"to_amount,omitempty"`
}

// Step is one leg of a route as reported by the engine. Read-only here.
type Step struct {
	Id        string         `json:"id"`
	Type      string         `json:"type"`
	Execution *StepExecution `json:"execution,omitempty"`
}

// Route is the engine's latest snapshot of an operation.
type Route struct {
	OperationId string  `json:"operation_id"`
	FromChainId int64   `json:"from_chain_id"`
	ToChainId   int64   `json:"to_chain_id"`
	FromToken   string  `json:"from_token"`
	ToToken     string  `json:"to_token"`
	FromAmount  string  `json:"from_amount"`
	FromAddress string  `json:"from_address"`
	ToAddress   string  `json:"to_address"`
	Steps       []*Step `json:"steps"`
}

// Intent extracts the immutable transfer request carried by the route.
func (r *Route) Intent() TransferIntent {
	return TransferIntent{
		FromChainId: r.FromChainId,
		ToChainId:   r.ToChainId,
		FromToken:   r.FromToken,
		ToToken:     r.ToToken,
		Amount:      r.FromAmount,
		FromAddress: r.FromAddress,
		ToAddress:   r.ToAddress,
	}
}

// QuoteRequest asks the router for a route quote.
type QuoteRequest struct {
	FromChainId int64  `json:"from_chain_id"`
	ToChainId   int64  `json:"to_chain_id"`
	FromToken   string `json:"from_token"`
	ToToken     string `json:"to_token"`
	Amount      string `json:"amount"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
}

// Quote is a prepared route plus the router's estimates.
type Quote struct {
	Id                   string `json:"id"`
	Route                *Route `json:"route"`
	EstimatedReceived    string `json:"estimated_received,omitempty"`
	EstimatedDurationSec int64  `json:"estimated_duration_sec,omitempty"`
}
