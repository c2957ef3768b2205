package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

func TestOrder_Totals(t *testing.T) {
	o := &domain.Order{
		ID:   "ORD-1",
		Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Items: []domain.LineItem{
			{ProductID: "PROD-001", Quantity: 10, UnitPrice: decimal.NewFromInt(2000)},
			{ProductID: "PROD-002", Quantity: 5, UnitPrice: decimal.NewFromInt(5000)},
			{ProductID: "PROD-001", Quantity: 2, UnitPrice: decimal.NewFromInt(2000)},
		},
	}
	if got := o.Total(); !got.Equal(decimal.NewFromInt(49000)) {
		t.Errorf("Total() = %s, want 49000", got)
	}
	if got := o.QuantityOf("PROD-001"); got != 12 {
		t.Errorf("QuantityOf(PROD-001) = %d, want 12", got)
	}
	if got := o.SubtotalOf("PROD-002"); !got.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("SubtotalOf(PROD-002) = %s, want 25000", got)
	}
	if got := o.QuantityOf("PROD-404"); got != 0 {
		t.Errorf("QuantityOf(PROD-404) = %d, want 0", got)
	}
}

func TestOrder_Validate(t *testing.T) {
	cases := []struct {
		name    string
		items   []domain.LineItem
		wantErr bool
	}{
		{
			name:  "valid",
			items: []domain.LineItem{{ProductID: "P", Quantity: 1, UnitPrice: decimal.Zero}},
		},
		{name: "empty items", wantErr: true},
		{
			name:    "zero quantity",
			items:   []domain.LineItem{{ProductID: "P", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}},
			wantErr: true,
		},
		{
			name:    "negative price",
			items:   []domain.LineItem{{ProductID: "P", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
			wantErr: true,
		},
		{
			name:    "missing product",
			items:   []domain.LineItem{{Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &domain.Order{ID: "ORD", Items: tc.items}
			err := o.Validate()
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfiguration) {
					t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
