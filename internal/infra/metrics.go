package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	checksRun          atomic.Uint64
	ordersCreated      atomic.Uint64
	paymentsForwarded  atomic.Uint64
	refundsIssued      atomic.Uint64
	ledgerErrors       atomic.Uint64
	settlementFailures atomic.Uint64

	// Gauges
	streamConnected atomic.Int32 // 1 = connected, 0 = down
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCheck records a check invocation.
func (m *Metrics) RecordCheck() {
	m.checksRun.Add(1)
}

// RecordOrderCreated records a newly provisioned order.
func (m *Metrics) RecordOrderCreated() {
	m.ordersCreated.Add(1)
}

// RecordForward records a payment forwarded to the master wallet.
func (m *Metrics) RecordForward() {
	m.paymentsForwarded.Add(1)
}

// RecordRefund records a refund (or a too-small close-out).
func (m *Metrics) RecordRefund() {
	m.refundsIssued.Add(1)
}

// RecordLedgerError records a transient ledger RPC failure.
func (m *Metrics) RecordLedgerError() {
	m.ledgerErrors.Add(1)
}

// RecordSettlementFailure records a failed sweep broadcast.
func (m *Metrics) RecordSettlementFailure() {
	m.settlementFailures.Add(1)
}

// SetStreamConnected sets the transfer stream connection gauge.
func (m *Metrics) SetStreamConnected(up bool) {
	if up {
		m.streamConnected.Store(1)
	} else {
		m.streamConnected.Store(0)
	}
}

// Snapshot returns current counter values for logging or inspection.
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"checks_run":          m.checksRun.Load(),
		"orders_created":      m.ordersCreated.Load(),
		"payments_forwarded":  m.paymentsForwarded.Load(),
		"refunds_issued":      m.refundsIssued.Load(),
		"ledger_errors":       m.ledgerErrors.Load(),
		"settlement_failures": m.settlementFailures.Load(),
	}
}
