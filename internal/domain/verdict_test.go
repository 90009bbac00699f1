package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var (
	testWindow   = 30 * time.Minute
	testGasFloor = decimal.RequireFromString("0.0035")
	testRequired = decimal.RequireFromString("0.5")
)

func transferOf(amount string) *Transfer {
	return &Transfer{
		Sender: "sx-payer",
		Amount: decimal.RequireFromString(amount),
		Asset:  "NAT",
		TxHash: "deadbeef",
	}
}

func TestClassify_RuleOrder(t *testing.T) {
	tests := []struct {
		name     string
		transfer *Transfer
		elapsed  time.Duration
		want     Verdict
	}{
		{"no transfer within window", nil, 5 * time.Minute, VerdictWait},
		{"no transfer after window", nil, 2 * time.Hour, VerdictWait},
		{"sufficient within window", transferOf("0.5"), 5 * time.Minute, VerdictForward},
		{"overpayment within window", transferOf("0.8"), 5 * time.Minute, VerdictForward},
		{"insufficient within window", transferOf("0.3"), 5 * time.Minute, VerdictRefundInsufficient},
		{"below gas floor", transferOf("0.001"), 5 * time.Minute, VerdictRefundTooSmall},
		{"exactly gas floor", transferOf("0.0035"), 5 * time.Minute, VerdictRefundTooSmall},
		{"just above gas floor", transferOf("0.0036"), 5 * time.Minute, VerdictRefundInsufficient},
		// Rule 1 beats every amount rule: even sufficient payments are
		// refunded once the window has elapsed.
		{"sufficient after window", transferOf("0.5"), 31 * time.Minute, VerdictRefundExpired},
		{"dust after window", transferOf("0.001"), 31 * time.Minute, VerdictRefundExpired},
		{"exactly at window edge", transferOf("0.5"), 30 * time.Minute, VerdictForward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.transfer, testRequired, tt.elapsed, testWindow, testGasFloor)
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_NeverYieldsReservedVerdict(t *testing.T) {
	amounts := []string{"0", "0.001", "0.0035", "0.3", "0.5", "100"}
	elapses := []time.Duration{0, 29 * time.Minute, 31 * time.Minute, 48 * time.Hour}

	check := func(tr *Transfer, elapsed time.Duration) {
		got := Classify(tr, testRequired, elapsed, testWindow, testGasFloor)
		if got == VerdictRefundExpiredNoPayment {
			t.Errorf("Classify(%v, %v) yielded reserved verdict", tr, elapsed)
		}
	}

	for _, elapsed := range elapses {
		check(nil, elapsed)
		for _, a := range amounts {
			check(transferOf(a), elapsed)
		}
	}
}

func TestVerdict_NeedsSweep(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    bool
	}{
		{VerdictWait, false},
		{VerdictForward, true},
		{VerdictRefundInsufficient, true},
		{VerdictRefundExpired, true},
		// Too small: the order closes but no transaction is broadcast.
		{VerdictRefundTooSmall, false},
	}

	for _, tt := range tests {
		if got := tt.verdict.NeedsSweep(); got != tt.want {
			t.Errorf("%s.NeedsSweep() = %v, want %v", tt.verdict, got, tt.want)
		}
	}
}

func TestVerdict_IsRefund(t *testing.T) {
	if VerdictForward.IsRefund() {
		t.Error("FORWARD must not be a refund verdict")
	}
	if VerdictWait.IsRefund() {
		t.Error("WAIT must not be a refund verdict")
	}
	for _, v := range []Verdict{VerdictRefundTooSmall, VerdictRefundInsufficient, VerdictRefundExpired} {
		if !v.IsRefund() {
			t.Errorf("%s should be a refund verdict", v)
		}
	}
}
