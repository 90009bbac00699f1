package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the unit of work: one customer purchase paid into a
// single-use ledger address. Orders are never deleted; terminal
// records double as the audit trail.
type Order struct {
	ID             string `gorm:"primaryKey"`
	PaymentAddress string `gorm:"uniqueIndex;not null"`

	// PrivateKeySeed is the hex-encoded seed of the ephemeral wallet.
	// Exclusively owned by this order, required to sweep funds out.
	PrivateKeySeed string `gorm:"not null"`

	RequiredAmount decimal.Decimal `gorm:"type:decimal(28,9);not null"`

	// PurchasedSeconds is the duration of the purchased effect,
	// applied from the moment of confirmation.
	PurchasedSeconds int64 `gorm:"not null"`

	Status   string `gorm:"not null;default:PENDING;index"`
	Metadata string

	// Set only when the order reaches CONFIRMED.
	SettlementStartedAt *time.Time
	SettlementEndsAt    *time.Time
	SettlementTxHash    string

	// Set only on the refund path. At most one of the settlement /
	// refund pairs is ever populated.
	RefundTxHash      string
	RefundDestination string

	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	// OrderStatusPending: awaiting an inbound transfer. Initial state.
	OrderStatusPending = "PENDING"
	// OrderStatusProcessing: a check invocation holds the settlement
	// lock. Transient; never observed across a completed check.
	OrderStatusProcessing = "PROCESSING"
	// OrderStatusConfirmed: payment honored, funds forwarded. Terminal.
	OrderStatusConfirmed = "CONFIRMED"
	// OrderStatusExpired: refunded, unrefundable, or failed. Terminal.
	OrderStatusExpired = "EXPIRED"
)

// IsTerminal reports whether the order has reached an absorbing state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusExpired
}

// PurchasedDuration returns the purchased effect duration.
func (o *Order) PurchasedDuration() time.Duration {
	return time.Duration(o.PurchasedSeconds) * time.Second
}

// CanTransition reports whether the status graph permits moving from
// the order's current status to next. Status only moves forward:
// PENDING -> PROCESSING -> {CONFIRMED, EXPIRED}.
func (o *Order) CanTransition(next string) bool {
	switch o.Status {
	case OrderStatusPending:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusConfirmed || next == OrderStatusExpired
	default:
		return false
	}
}
