package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"0.125", "0.13"},
		{"99.999", "100.00"},
		{"50", "50.00"},
	}
	for _, tc := range tests {
		if got := Round2(dec(tc.in)); !got.Equal(dec(tc.want)) {
			t.Fatalf("Round2(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestIsZeroWithinEpsilon(t *testing.T) {
	if !IsZero(dec("0.004")) {
		t.Fatal("0.004 should be zero within epsilon")
	}
	if !IsZero(dec("-0.004")) {
		t.Fatal("-0.004 should be zero within epsilon")
	}
	if IsZero(dec("0.01")) {
		t.Fatal("0.01 should not be zero")
	}
}

func TestIsPositive(t *testing.T) {
	if IsPositive(dec("0.004")) {
		t.Fatal("sub-epsilon amount should not be positive")
	}
	if !IsPositive(dec("0.01")) {
		t.Fatal("0.01 should be positive")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(dec("-3.50")); !got.Equal(decimal.Zero) {
		t.Fatalf("expected negative amount clamped to zero, got %s", got)
	}
	if got := Clamp(dec("3.50")); !got.Equal(dec("3.50")) {
		t.Fatalf("expected positive amount preserved, got %s", got)
	}
}

func TestMinAndGTE(t *testing.T) {
	if got := Min(dec("70"), dec("100")); !got.Equal(dec("70")) {
		t.Fatalf("Min(70,100) = %s", got)
	}
	if !GTE(dec("500.004"), dec("500.00")) {
		t.Fatal("expected GTE within epsilon")
	}
	if GTE(dec("499.99"), dec("500.00")) {
		t.Fatal("499.99 should not be >= 500.00")
	}
}
