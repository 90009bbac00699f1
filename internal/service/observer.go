package service

import (
	"context"

	"settle_go/internal/domain"
)

// Observer selects the most recent qualifying inbound transfer for a
// payment address: native-asset type, strictly positive amount.
type Observer struct {
	client domain.LedgerClient
	asset  string
}

// NewObserver creates a ledger observer for the given native asset.
func NewObserver(client domain.LedgerClient, asset string) *Observer {
	return &Observer{client: client, asset: asset}
}

// LatestIncomingTransfer returns the newest qualifying transfer to
// address, or nil when none exists yet. A nil result is the normal
// state while waiting for payment, not an error.
func (o *Observer) LatestIncomingTransfer(ctx context.Context, address string) (*domain.Transfer, error) {
	transfers, err := o.client.QueryTransfersTo(ctx, address)
	if err != nil {
		return nil, err
	}

	// Results arrive newest first; the first qualifying entry wins.
	for i := range transfers {
		t := &transfers[i]
		if t.Asset != o.asset {
			continue
		}
		if !t.Amount.IsPositive() {
			continue
		}
		return t, nil
	}
	return nil, nil
}
