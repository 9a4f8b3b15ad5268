package payment

import (
	"errors"
	"strings"
	"testing"

	"github.com/nellaimart/billing/types"
)

func TestCashAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		tendered types.Money
		total    types.Money
		declined bool
		change   types.Money
	}{
		{"exact", types.INR(5000), types.INR(5000), false, types.INR(0)},
		{"overpay", types.INR(10000), types.INR(7550), false, types.INR(2450)},
		{"short", types.INR(4999), types.INR(5000), true, types.Money{}},
		{"negative tender", types.INR(-100), types.INR(5000), true, types.Money{}},
		{"zero total", types.INR(0), types.INR(0), false, types.INR(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := Cash{Tendered: tt.tendered}.Authorize(tt.total)
			if tt.declined {
				if !errors.Is(err, ErrDeclined) {
					t.Fatalf("expected ErrDeclined, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !auth.Change.Equal(tt.change) {
				t.Errorf("change: got %v, want %v", auth.Change, tt.change)
			}
			if !auth.Tendered.Equal(tt.tendered) {
				t.Errorf("tendered: got %v, want %v", auth.Tendered, tt.tendered)
			}
			if !strings.HasPrefix(auth.Reference, "cash_") {
				t.Errorf("reference: got %q", auth.Reference)
			}
		})
	}
}

func TestCardAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		card     Card
		declined bool
	}{
		{"valid", Card{Number: "4111111111111111", Holder: "Priya", CVV: "123"}, false},
		{"spaced number", Card{Number: "4111 1111 1111 1111", CVV: "123"}, false},
		{"short number", Card{Number: "411111111111111", CVV: "123"}, true},
		{"long number", Card{Number: "41111111111111112", CVV: "123"}, true},
		{"letters in number", Card{Number: "4111x11111111111", CVV: "123"}, true},
		{"short cvv", Card{Number: "4111111111111111", CVV: "12"}, true},
		{"long cvv", Card{Number: "4111111111111111", CVV: "1234"}, true},
		{"empty", Card{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := tt.card.Authorize(types.INR(5000))
			if tt.declined {
				if !errors.Is(err, ErrDeclined) {
					t.Fatalf("expected ErrDeclined, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(auth.Reference, "card_") {
				t.Errorf("reference: got %q", auth.Reference)
			}
		})
	}
}

func TestUPIAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		upi      UPI
		declined bool
	}{
		{"valid", UPI{VPA: "priya@okbank", ReferenceNo: "T123456"}, false},
		{"missing at", UPI{VPA: "priyaokbank", ReferenceNo: "T123456"}, true},
		{"empty vpa", UPI{VPA: "", ReferenceNo: "T123456"}, true},
		{"missing reference", UPI{VPA: "priya@okbank", ReferenceNo: "  "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := tt.upi.Authorize(types.INR(5000))
			if tt.declined {
				if !errors.Is(err, ErrDeclined) {
					t.Fatalf("expected ErrDeclined, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if auth.Reference != tt.upi.ReferenceNo {
				t.Errorf("reference: got %q, want %q", auth.Reference, tt.upi.ReferenceNo)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	if (Cash{}).Kind() != KindCash {
		t.Error("cash kind mismatch")
	}
	if (Card{}).Kind() != KindCard {
		t.Error("card kind mismatch")
	}
	if (UPI{}).Kind() != KindUPI {
		t.Error("upi kind mismatch")
	}
}
