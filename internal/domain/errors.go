package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// LedgerError represents a ledger RPC failure. Transient failures
// (network, timeout, 5xx) are retriable: the caller may re-invoke
// check and order status is guaranteed unchanged.
type LedgerError struct {
	Op        string // Operation that failed (e.g., "query", "broadcast")
	Err       error  // Underlying error
	Retriable bool
}

func (e *LedgerError) Error() string {
	return "ledger " + e.Op + ": " + e.Err.Error()
}

func (e *LedgerError) IsRetriable() bool {
	return e.Retriable
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a retriable ledger error
func NewLedgerError(op string, err error) *LedgerError {
	return &LedgerError{Op: op, Err: err, Retriable: true}
}

// NewFatalLedgerError creates a non-retriable ledger error
func NewFatalLedgerError(op string, err error) *LedgerError {
	return &LedgerError{Op: op, Err: err, Retriable: false}
}

// SettlementError represents a failed sweep broadcast. Never
// retriable by the engine: the order is closed EXPIRED and the
// failure surfaced for manual intervention.
type SettlementError struct {
	Verdict Verdict // Action that was being executed
	Err     error
}

func (e *SettlementError) Error() string {
	return "settlement [" + e.Verdict.String() + "]: " + e.Err.Error()
}

func (e *SettlementError) IsRetriable() bool {
	return false
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

var (
	// ErrOrderNotFound is returned when no order exists for an id or
	// address. User error, not retriable.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyProcessed is returned when a check races a concurrent
	// invocation or re-checks a settled order. Benign.
	ErrAlreadyProcessed = errors.New("order already processed")

	// ErrNoPriceTier is returned when order intake requests a
	// duration with no configured price.
	ErrNoPriceTier = errors.New("no price tier for requested duration")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
