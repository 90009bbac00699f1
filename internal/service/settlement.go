package service

import (
	"context"
	"log/slog"

	"settle_go/internal/domain"
)

// SettlementExecutor broadcasts full-balance sweeps. The same path
// serves forwarding to the master wallet and refunding the payer;
// only the destination differs. Failures are not retried here: the
// coordinator closes the order and surfaces them.
type SettlementExecutor struct {
	client domain.LedgerClient
	logger *slog.Logger
}

// NewSettlementExecutor creates a settlement executor.
func NewSettlementExecutor(client domain.LedgerClient) *SettlementExecutor {
	return &SettlementExecutor{
		client: client,
		logger: slog.Default().With("module", "settlement"),
	}
}

// Sweep moves the entire current balance of the address controlled by
// privateKeySeed to destination and returns the transaction hash.
func (e *SettlementExecutor) Sweep(ctx context.Context, privateKeySeed, destination string) (domain.TxResult, error) {
	result, err := e.client.BroadcastSweep(ctx, privateKeySeed, destination)
	if err != nil {
		e.logger.Error("Sweep broadcast failed",
			slog.String("destination", destination), slog.Any("error", err))
		return domain.TxResult{}, err
	}

	e.logger.Info("Sweep completed",
		slog.String("destination", destination), slog.String("hash", result.Hash))
	return result, nil
}
