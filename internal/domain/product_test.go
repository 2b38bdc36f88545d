package domain

import (
	"errors"
	"testing"
)

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name     string
		product  *Product
		errCount int
	}{
		{name: "valid product", product: &Product{ID: 5, Name: "book", PriceMinor: 1500}},
		{name: "free product", product: &Product{ID: 6, Name: "sticker", PriceMinor: 0}},
		{name: "negative price", product: &Product{ID: 7, PriceMinor: -1}, errCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.product.Validate()
			if len(errs) != tt.errCount {
				t.Fatalf("expected %d errors, got %d: %v", tt.errCount, len(errs), errs)
			}
			if tt.errCount > 0 && !errors.Is(errs[0], ErrPriceNegative) {
				t.Fatalf("expected ErrPriceNegative, got %v", errs[0])
			}
		})
	}
}
