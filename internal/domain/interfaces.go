package domain

import (
	"context"
)

// WalletProvisioner issues a fresh single-use keypair for a new order.
type WalletProvisioner interface {
	Generate() (address string, privateKeySeed string, err error)
}

// LedgerClient is the narrow RPC surface consumed from the ledger
// node. QueryTransfersTo returns transactions addressed to address,
// newest first. BroadcastSweep moves the entire current balance of
// the address controlled by privateKeySeed to destination.
type LedgerClient interface {
	QueryTransfersTo(ctx context.Context, address string) ([]Transfer, error)
	BroadcastSweep(ctx context.Context, privateKeySeed, destination string) (TxResult, error)
}

// OrderStore is the order record store. ConditionalUpdate is the one
// concurrency-critical operation: it must apply patch only if the
// stored status still equals expectedStatus, atomically, and report
// whether it did.
type OrderStore interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByAddress(ctx context.Context, address string) (*Order, error)
	ConditionalUpdate(ctx context.Context, address, expectedStatus string, patch map[string]any) (bool, error)
	Update(ctx context.Context, address string, patch map[string]any) error
	ListByStatus(ctx context.Context, status string) ([]Order, error)
}
