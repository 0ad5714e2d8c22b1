package domain

import "time"

// OperationType distinguishes buy operations from sell operations.
type OperationType string

const (
	OperationBuy  OperationType = "BUY"
	OperationSell OperationType = "SELL"
)

// Operation is a single buy or sell instruction against one stock.
// Operations are transient: produced by the boundary layer, consumed
// once by the trade engine, never persisted.
type Operation struct {
	Type   OperationType
	Login  string // user performing the operation
	Index  string // stock being traded
	Amount int64
}

// OperationResult is the snapshot returned after an operation commits.
// User and Stock carry the post-operation state.
type OperationResult struct {
	OperationID string
	Type        OperationType
	Amount      int64
	User        *User
	Stock       *Stock
	Timestamp   time.Time
}
