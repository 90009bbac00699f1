package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"settle_go/internal/clock"
	"settle_go/internal/domain"
	"settle_go/internal/infra"
)

// TransferObserver yields the newest qualifying inbound transfer.
type TransferObserver interface {
	LatestIncomingTransfer(ctx context.Context, address string) (*domain.Transfer, error)
}

// Settler broadcasts a full-balance sweep.
type Settler interface {
	Sweep(ctx context.Context, privateKeySeed, destination string) (domain.TxResult, error)
}

// CreateOrderRequest is the intake payload supplied by the
// presentation collaborator.
type CreateOrderRequest struct {
	RequiredAmount    decimal.Decimal
	PurchasedDuration time.Duration
	Metadata          string
}

// Coordinator owns the order state machine. All status mutations go
// through it; the PENDING->PROCESSING claim is a store-level
// compare-and-set, so at most one concurrent check settles an order.
type Coordinator struct {
	store       domain.OrderStore
	provisioner domain.WalletProvisioner
	observer    TransferObserver
	settler     Settler
	clk         clock.Clock

	masterWallet string
	window       time.Duration
	gasFloor     decimal.Decimal

	logger *slog.Logger
}

// NewCoordinator wires the settlement engine.
func NewCoordinator(
	store domain.OrderStore,
	provisioner domain.WalletProvisioner,
	observer TransferObserver,
	settler Settler,
	clk clock.Clock,
	masterWallet string,
	window time.Duration,
	gasFloor decimal.Decimal,
) *Coordinator {
	return &Coordinator{
		store:        store,
		provisioner:  provisioner,
		observer:     observer,
		settler:      settler,
		clk:          clk,
		masterWallet: masterWallet,
		window:       window,
		gasFloor:     gasFloor,
		logger:       slog.Default().With("module", "coordinator"),
	}
}

// CreateOrder provisions a fresh payment address and persists the
// order as PENDING. RNG failure aborts creation.
func (c *Coordinator) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if !req.RequiredAmount.IsPositive() {
		return nil, fmt.Errorf("required amount must be positive, got %s", req.RequiredAmount)
	}
	if req.PurchasedDuration <= 0 {
		return nil, fmt.Errorf("purchased duration must be positive, got %s", req.PurchasedDuration)
	}

	address, seed, err := c.provisioner.Generate()
	if err != nil {
		return nil, fmt.Errorf("wallet provisioning failed: %w", err)
	}

	order := &domain.Order{
		ID:               uuid.NewString(),
		PaymentAddress:   address,
		PrivateKeySeed:   seed,
		RequiredAmount:   req.RequiredAmount,
		PurchasedSeconds: int64(req.PurchasedDuration / time.Second),
		Status:           domain.OrderStatusPending,
		Metadata:         req.Metadata,
		CreatedAt:        c.clk.Now(),
	}

	if err := c.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	infra.GlobalMetrics.RecordOrderCreated()
	c.logger.Info("Order created",
		slog.String("order_id", order.ID),
		slog.String("address", address),
		slog.String("amount", req.RequiredAmount.String()))
	return order, nil
}

// Check runs one reconciliation pass for the order.
//
// Benign results (not found, duplicate trigger, still waiting) come
// back as outcomes with a nil error. A transient ledger failure comes
// back as a retriable error with status untouched. A failed sweep
// closes the order EXPIRED and returns a SettlementError alongside
// the FATAL outcome.
func (c *Coordinator) Check(ctx context.Context, orderID string) (domain.Outcome, error) {
	infra.GlobalMetrics.RecordCheck()

	order, err := c.store.GetByID(ctx, orderID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return domain.Outcome{Code: domain.OutcomeNotFound}, nil
	}

	// Idempotency short-circuit: repeated triggers after settlement
	// (or while another invocation holds the lock) are no-ops.
	if order.Status != domain.OrderStatusPending {
		return domain.Outcome{Code: domain.OutcomeAlreadyProcessed}, nil
	}

	transfer, err := c.observer.LatestIncomingTransfer(ctx, order.PaymentAddress)
	if err != nil {
		infra.GlobalMetrics.RecordLedgerError()
		// Status untouched: the caller may simply re-invoke Check.
		return domain.Outcome{}, err
	}

	elapsed := c.clk.Now().Sub(order.CreatedAt)
	verdict := domain.Classify(transfer, order.RequiredAmount, elapsed, c.window, c.gasFloor)

	if verdict == domain.VerdictWait {
		if elapsed > c.window {
			return domain.Outcome{Code: domain.OutcomePaymentNotDetected}, nil
		}
		return domain.Outcome{Code: domain.OutcomeWaiting}, nil
	}

	// Claim the order. The conditional write is the sole guard
	// against two concurrent checks both executing a settlement.
	claimed, err := c.store.ConditionalUpdate(ctx, order.PaymentAddress,
		domain.OrderStatusPending, map[string]any{"status": domain.OrderStatusProcessing})
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("claim order: %w", err)
	}
	if !claimed {
		return domain.Outcome{Code: domain.OutcomeAlreadyProcessed}, nil
	}

	return c.settle(ctx, order, transfer, verdict)
}

// CheckAddress runs Check for the order owning the payment address.
// Used by the transfer stream.
func (c *Coordinator) CheckAddress(ctx context.Context, address string) (domain.Outcome, error) {
	order, err := c.store.GetByAddress(ctx, address)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return domain.Outcome{Code: domain.OutcomeNotFound}, nil
	}
	return c.Check(ctx, order.ID)
}

// settle executes the ledger action implied by the verdict and writes
// the terminal status. Called with the PROCESSING lock held.
func (c *Coordinator) settle(ctx context.Context, order *domain.Order, transfer *domain.Transfer, verdict domain.Verdict) (domain.Outcome, error) {
	switch verdict {
	case domain.VerdictForward:
		result, err := c.settler.Sweep(ctx, order.PrivateKeySeed, c.masterWallet)
		if err != nil {
			return c.failSettlement(ctx, order, verdict, err)
		}

		now := c.clk.Now()
		ends := now.Add(order.PurchasedDuration())
		if err := c.store.Update(ctx, order.PaymentAddress, map[string]any{
			"status":                domain.OrderStatusConfirmed,
			"settlement_started_at": now,
			"settlement_ends_at":    ends,
			"settlement_tx_hash":    result.Hash,
		}); err != nil {
			// Funds moved but the record is stuck PROCESSING; this
			// needs an operator, not a retry that could sweep twice.
			c.logger.Error("Terminal write failed after forward",
				slog.String("order_id", order.ID), slog.Any("error", err))
			return domain.Outcome{Code: domain.OutcomeFatal, Reason: err.Error()},
				fmt.Errorf("terminal write: %w", err)
		}

		infra.GlobalMetrics.RecordForward()
		c.logger.Info("Payment confirmed",
			slog.String("order_id", order.ID),
			slog.String("tx", result.Hash),
			slog.Time("ends_at", ends))
		return domain.Outcome{
			Code:     domain.OutcomeConfirmed,
			Amount:   transfer.Amount,
			Duration: order.PurchasedDuration(),
		}, nil

	case domain.VerdictRefundInsufficient, domain.VerdictRefundExpired:
		result, err := c.settler.Sweep(ctx, order.PrivateKeySeed, transfer.Sender)
		if err != nil {
			return c.failSettlement(ctx, order, verdict, err)
		}

		if err := c.store.Update(ctx, order.PaymentAddress, map[string]any{
			"status":             domain.OrderStatusExpired,
			"refund_tx_hash":     result.Hash,
			"refund_destination": transfer.Sender,
		}); err != nil {
			c.logger.Error("Terminal write failed after refund",
				slog.String("order_id", order.ID), slog.Any("error", err))
			return domain.Outcome{Code: domain.OutcomeFatal, Reason: err.Error()},
				fmt.Errorf("terminal write: %w", err)
		}

		infra.GlobalMetrics.RecordRefund()
		c.logger.Info("Payment refunded",
			slog.String("order_id", order.ID),
			slog.String("verdict", verdict.String()),
			slog.String("tx", result.Hash))

		code := domain.OutcomeRefundedInsufficient
		if verdict == domain.VerdictRefundExpired {
			code = domain.OutcomeRefundedExpired
		}
		return domain.Outcome{Code: code, Amount: transfer.Amount}, nil

	case domain.VerdictRefundTooSmall:
		// No outbound transaction: the amount would not survive gas.
		if err := c.store.Update(ctx, order.PaymentAddress, map[string]any{
			"status": domain.OrderStatusExpired,
		}); err != nil {
			return domain.Outcome{Code: domain.OutcomeFatal, Reason: err.Error()},
				fmt.Errorf("terminal write: %w", err)
		}

		infra.GlobalMetrics.RecordRefund()
		c.logger.Info("Order closed, transfer below gas floor",
			slog.String("order_id", order.ID),
			slog.String("amount", transfer.Amount.String()))
		return domain.Outcome{Code: domain.OutcomeTooSmallToRefund, Amount: transfer.Amount}, nil

	default:
		return domain.Outcome{}, fmt.Errorf("unexpected verdict %s", verdict)
	}
}

// failSettlement closes the order EXPIRED after a failed broadcast
// and surfaces the failure for manual intervention. No automatic
// retry: the key material stays with the record for an operator.
func (c *Coordinator) failSettlement(ctx context.Context, order *domain.Order, verdict domain.Verdict, cause error) (domain.Outcome, error) {
	infra.GlobalMetrics.RecordSettlementFailure()

	if err := c.store.Update(ctx, order.PaymentAddress, map[string]any{
		"status": domain.OrderStatusExpired,
	}); err != nil {
		c.logger.Error("Failed to close order after settlement failure",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}

	serr := &domain.SettlementError{Verdict: verdict, Err: cause}
	c.logger.Error("Settlement failed, manual intervention required",
		slog.String("order_id", order.ID),
		slog.String("verdict", verdict.String()),
		slog.Any("error", cause))
	return domain.Outcome{Code: domain.OutcomeFatal, Reason: serr.Error()}, serr
}
