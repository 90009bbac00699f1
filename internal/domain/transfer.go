package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is a single inbound ledger transaction, normalized from
// base units to a decimal native-asset amount at the boundary.
type Transfer struct {
	Sender    string
	Amount    decimal.Decimal
	Asset     string
	TxHash    string
	Timestamp time.Time
}

// TxResult is the outcome of a broadcast sweep.
type TxResult struct {
	Hash string
}
