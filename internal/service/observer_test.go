package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"settle_go/internal/domain"
)

type fakeLedgerClient struct {
	transfers []domain.Transfer
	err       error
}

func (c *fakeLedgerClient) QueryTransfersTo(context.Context, string) ([]domain.Transfer, error) {
	return c.transfers, c.err
}

func (c *fakeLedgerClient) BroadcastSweep(context.Context, string, string) (domain.TxResult, error) {
	return domain.TxResult{}, errors.New("not used")
}

func tx(hash, asset, amount string) domain.Transfer {
	return domain.Transfer{
		Sender:    "payer",
		Amount:    decimal.RequireFromString(amount),
		Asset:     asset,
		TxHash:    hash,
		Timestamp: time.Now(),
	}
}

func TestObserver_PicksNewestQualifying(t *testing.T) {
	client := &fakeLedgerClient{transfers: []domain.Transfer{
		tx("t3", "OTHER", "1.0"), // wrong asset
		tx("t2", "NAT", "0"),     // no positive balance change
		tx("t1", "NAT", "0.5"),   // first qualifying, newest-first order
		tx("t0", "NAT", "0.9"),
	}}
	obs := NewObserver(client, "NAT")

	transfer, err := obs.LatestIncomingTransfer(context.Background(), "sx1")
	if err != nil {
		t.Fatalf("LatestIncomingTransfer failed: %v", err)
	}
	if transfer == nil {
		t.Fatal("expected a transfer")
	}
	if transfer.TxHash != "t1" {
		t.Errorf("picked %s, want t1 (newest qualifying)", transfer.TxHash)
	}
}

func TestObserver_NoTransfersYet(t *testing.T) {
	obs := NewObserver(&fakeLedgerClient{}, "NAT")

	transfer, err := obs.LatestIncomingTransfer(context.Background(), "sx1")
	if err != nil {
		t.Fatalf("no transfers must not be an error: %v", err)
	}
	if transfer != nil {
		t.Errorf("expected nil, got %+v", transfer)
	}
}

func TestObserver_NoQualifyingTransfers(t *testing.T) {
	client := &fakeLedgerClient{transfers: []domain.Transfer{
		tx("t1", "OTHER", "5.0"),
		tx("t0", "NAT", "0"),
	}}
	obs := NewObserver(client, "NAT")

	transfer, err := obs.LatestIncomingTransfer(context.Background(), "sx1")
	if err != nil {
		t.Fatalf("LatestIncomingTransfer failed: %v", err)
	}
	if transfer != nil {
		t.Errorf("expected nil, got %+v", transfer)
	}
}

func TestObserver_PropagatesLedgerError(t *testing.T) {
	client := &fakeLedgerClient{err: domain.NewLedgerError("query", errors.New("timeout"))}
	obs := NewObserver(client, "NAT")

	_, err := obs.LatestIncomingTransfer(context.Background(), "sx1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsRetriable(err) {
		t.Errorf("transient query failure should stay retriable, got %v", err)
	}
}
