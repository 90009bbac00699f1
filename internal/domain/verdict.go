package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Verdict drives the settlement action taken for an observed transfer.
type Verdict int

const (
	// VerdictWait: no transfer observed yet; leave the order PENDING.
	VerdictWait Verdict = iota
	// VerdictRefundExpiredNoPayment is reserved for an operator-forced
	// expiry of an unpaid order. Classify never yields it: an order
	// with no inbound transfer waits indefinitely.
	VerdictRefundExpiredNoPayment
	// VerdictRefundTooSmall: the transfer is below the gas floor and
	// cannot be refunded without the refund itself failing. The order
	// is closed with no outbound transaction.
	VerdictRefundTooSmall
	// VerdictRefundInsufficient: the transfer is movable but below the
	// required price. Refund to the sender.
	VerdictRefundInsufficient
	// VerdictRefundExpired: a transfer arrived after the payment
	// window. Refunded even when the amount would have sufficed.
	VerdictRefundExpired
	// VerdictForward: qualifying payment. Sweep to the master wallet.
	VerdictForward
)

func (v Verdict) String() string {
	switch v {
	case VerdictWait:
		return "WAIT"
	case VerdictRefundExpiredNoPayment:
		return "REFUND_EXPIRED_NO_PAYMENT"
	case VerdictRefundTooSmall:
		return "REFUND_TOO_SMALL"
	case VerdictRefundInsufficient:
		return "REFUND_INSUFFICIENT"
	case VerdictRefundExpired:
		return "REFUND_EXPIRED_WITH_PAYMENT"
	case VerdictForward:
		return "FORWARD"
	default:
		return "UNKNOWN"
	}
}

// IsRefund reports whether the verdict closes the order without
// honoring the payment.
func (v Verdict) IsRefund() bool {
	switch v {
	case VerdictRefundTooSmall, VerdictRefundInsufficient, VerdictRefundExpired, VerdictRefundExpiredNoPayment:
		return true
	}
	return false
}

// NeedsSweep reports whether the verdict requires broadcasting a
// ledger transaction.
func (v Verdict) NeedsSweep() bool {
	return v == VerdictForward || v == VerdictRefundInsufficient || v == VerdictRefundExpired
}

// Classify maps an observed transfer to a settlement verdict.
// Pure; rule order is load-bearing, first match wins:
//
//  1. transfer present and window elapsed -> refund, even if sufficient
//  2. no transfer -> wait (no expiry fires without an observed transfer)
//  3. amount <= gasFloor -> too small to refund, close with no tx
//  4. amount < required -> refund insufficient
//  5. amount >= required -> forward
func Classify(transfer *Transfer, required decimal.Decimal, elapsed, window time.Duration, gasFloor decimal.Decimal) Verdict {
	if transfer != nil && elapsed > window {
		return VerdictRefundExpired
	}
	if transfer == nil {
		return VerdictWait
	}
	if transfer.Amount.LessThanOrEqual(gasFloor) {
		return VerdictRefundTooSmall
	}
	if transfer.Amount.LessThan(required) {
		return VerdictRefundInsufficient
	}
	return VerdictForward
}
