package types

import "time"

// OperationStatus is the coarse lifecycle status of a cross-chain operation.
type OperationStatus string

const (
	OpStatusPending        OperationStatus = "PENDING"
	OpStatusActionRequired OperationStatus = "ACTION_REQUIRED"
	OpStatusCompleted      OperationStatus = "COMPLETED"
	OpStatusFailed         OperationStatus = "FAILED"
	OpStatusUnknown        OperationStatus = "UNKNOWN"
)

// IsTerminal returns true once no further status change is permitted.
func (s OperationStatus) IsTerminal() bool {
	return s == OpStatusCompleted || s == OpStatusFailed
}

// TxInfo describes one on-chain transaction of an operation.
type TxInfo struct {
	Hash        string `json:"hash"`
	ChainId     int64  `json:"chain_id"`
	ExplorerUrl string `json:"explorer_url,omitempty"`
}

// TransferIntent is an immutable copy of the original transfer request.
type TransferIntent struct {
	FromChainId int64  `json:"from_chain_id"`
	ToChainId   int64  `json:"to_chain_id"`
	FromToken   string `json:"from_token"`
	ToToken     string `json:"to_token"`
	Amount      string `json:"amount"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
}

// OperationTracking is the internal per-operation record. It is owned by the
// tracker registry; everything outside the registry sees only copies or the
// OperationResult projection.
type OperationTracking struct {
	OperationId string
	Status      OperationStatus
	StartTime   time.Time
	Intent      TransferIntent

	SourceTx       *TxInfo
	DestinationTx  *TxInfo
	ReceivedAmount string
	Error          string
	StatusMessage  string

	// True between detecting that a step needs user action and the engine
	// actually producing the transaction payload to confirm.
	IsAwaitingConfirmationDetails bool
}

// OperationResult is the read-only projection returned to callers.
type OperationResult struct {
	OperationId    string          `json:"operation_id"`
	Status         OperationStatus `json:"status"`
	SourceTx       *TxInfo         `json:"source_tx,omitempty"`
	DestinationTx  *TxInfo         `json:"destination_tx,omitempty"`
	ReceivedAmount string          `json:"received_amount,omitempty"`
	Error          string          `json:"error,omitempty"`
	StatusMessage  string          `json:"status_message,omitempty"`
}
