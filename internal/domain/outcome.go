package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutcomeCode identifies the result of a check invocation. The
// presentation layer maps each code to user-facing text.
type OutcomeCode string

const (
	// OutcomeWaiting: no transfer yet, payment window still open.
	OutcomeWaiting OutcomeCode = "WAITING"
	// OutcomePaymentNotDetected: no transfer yet and the window has
	// elapsed. The order stays PENDING; a late transfer is still
	// picked up (and refunded) by a later check.
	OutcomePaymentNotDetected OutcomeCode = "PAYMENT_NOT_DETECTED"
	// OutcomeConfirmed: payment honored, funds forwarded.
	OutcomeConfirmed OutcomeCode = "CONFIRMED"
	// OutcomeRefundedInsufficient: underpayment refunded to sender.
	OutcomeRefundedInsufficient OutcomeCode = "REFUNDED_INSUFFICIENT"
	// OutcomeRefundedExpired: late payment refunded to sender.
	OutcomeRefundedExpired OutcomeCode = "REFUNDED_EXPIRED"
	// OutcomeTooSmallToRefund: transfer below the gas floor; order
	// closed, no refund broadcast.
	OutcomeTooSmallToRefund OutcomeCode = "TOO_SMALL_TO_REFUND"
	// OutcomeAlreadyProcessed: duplicate trigger after settlement, or
	// a concurrent check claimed the order first. Benign no-op.
	OutcomeAlreadyProcessed OutcomeCode = "ALREADY_PROCESSED"
	// OutcomeNotFound: no order for the given id.
	OutcomeNotFound OutcomeCode = "NOT_FOUND"
	// OutcomeFatal: settlement broadcast failed; order closed and
	// manual intervention required.
	OutcomeFatal OutcomeCode = "FATAL"
)

// Outcome is the result of Coordinator.Check.
type Outcome struct {
	Code OutcomeCode

	// Amount is the observed transfer amount for CONFIRMED and the
	// refund outcomes.
	Amount decimal.Decimal

	// Duration is the purchased effect duration, set for CONFIRMED.
	Duration time.Duration

	// Reason carries the failure detail for FATAL.
	Reason string
}
