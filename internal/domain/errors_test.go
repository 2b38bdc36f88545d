package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantNotFound   bool
		wantConflict   bool
		wantValidation bool
	}{
		{name: "user not found", err: ErrUserNotFound, wantNotFound: true},
		{name: "address not found", err: ErrAddressNotFound, wantNotFound: true},
		{name: "product not found", err: ErrProductNotFound, wantNotFound: true},
		{name: "cart not found", err: ErrCartNotFound, wantNotFound: true},
		{name: "product conflict", err: ErrProductAlreadyExists, wantConflict: true},
		{name: "email invalid", err: ErrEmailInvalid, wantValidation: true},
		{name: "password too short", err: ErrPasswordTooShort, wantValidation: true},
		{name: "price negative", err: ErrPriceNegative, wantValidation: true},
		{
			name:           "joined validation errors",
			err:            errors.Join(ErrEmailInvalid, ErrPasswordTooShort),
			wantValidation: true,
		},
		{
			name:         "wrapped not found",
			err:          fmt.Errorf("load cart: %w", ErrCartNotFound),
			wantNotFound: true,
		},
		{name: "unrelated error", err: errors.New("boom")},
		{name: "nil error", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.wantNotFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.wantNotFound)
			}
			if got := IsConflict(tt.err); got != tt.wantConflict {
				t.Errorf("IsConflict() = %v, want %v", got, tt.wantConflict)
			}
			if got := IsValidation(tt.err); got != tt.wantValidation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.wantValidation)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := ErrUserNotFound.Error(); got != "user not found" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := ErrProductAlreadyExists.Error(); got != "product already exists" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "idempotency already exists", err: ErrIdempotencyKeyAlreadyExists, want: true},
		{name: "idempotency hash mismatch", err: ErrIdempotencyHashMismatch, want: true},
		{
			name: "wrapped idempotency conflict",
			err:  errors.Join(ErrIdempotencyHashMismatch, errors.New("extra context")),
			want: true,
		},
		{name: "non idempotency error", err: ErrProductAlreadyExists, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIdempotencyConflict(tt.err); got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}
