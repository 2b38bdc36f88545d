package domain_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name     string
		user     domain.User
		wantErrs []error
	}{
		{
			name: "valid user",
			user: domain.User{Name: "ana", Email: "a@b.com", Password: "abc"},
		},
		{
			name:     "email without at",
			user:     domain.User{Name: "ana", Email: "no-at-symbol.com", Password: "abc"},
			wantErrs: []error{domain.ErrEmailInvalid},
		},
		{
			name:     "email with two at",
			user:     domain.User{Name: "ana", Email: "a@b@c.com", Password: "abc"},
			wantErrs: []error{domain.ErrEmailInvalid},
		},
		{
			name:     "short password",
			user:     domain.User{Name: "ana", Email: "a@b.com", Password: "ab"},
			wantErrs: []error{domain.ErrPasswordTooShort},
		},
		{
			name: "password counted in characters",
			user: domain.User{Name: "ana", Email: "a@b.com", Password: "жжж"},
		},
		{
			name:     "both invalid",
			user:     domain.User{Email: "", Password: ""},
			wantErrs: []error{domain.ErrEmailInvalid, domain.ErrPasswordTooShort},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.user.Validate()
			if len(errs) != len(tc.wantErrs) {
				t.Fatalf("expected %d errors, got %d: %v", len(tc.wantErrs), len(errs), errs)
			}
			for i, want := range tc.wantErrs {
				if !errors.Is(errs[i], want) {
					t.Fatalf("error[%d]=%v, want %v", i, errs[i], want)
				}
			}
		})
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email      string
		wantDomain string
		wantOK     bool
	}{
		{email: "ana@example.com", wantDomain: "example.com", wantOK: true},
		{email: "ana@", wantDomain: "", wantOK: true},
		{email: "example.com", wantOK: false},
		{email: "a@b@c", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			got, ok := domain.EmailDomain(tc.email)
			if ok != tc.wantOK || got != tc.wantDomain {
				t.Fatalf("EmailDomain(%q)=(%q,%v), want (%q,%v)", tc.email, got, ok, tc.wantDomain, tc.wantOK)
			}
		})
	}
}

func TestEmailsByDomain(t *testing.T) {
	users := []domain.User{
		{ID: 1, Email: "ana@example.com"},
		{ID: 2, Email: "bob@other.org"},
		{ID: 3, Email: "carl@example.com"},
		{ID: 4, Email: "dan@sub.example.com"},
	}

	got := domain.EmailsByDomain(users, "example.com")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "ana@example.com" || got[1] != "carl@example.com" {
		t.Fatalf("unexpected emails: %v", got)
	}

	none := domain.EmailsByDomain(users, "missing.net")
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}

	empty := domain.EmailsByDomain(append(users, domain.User{ID: 5, Email: "eve@"}), "")
	if len(empty) != 1 || empty[0] != "eve@" {
		t.Fatalf("empty domain must match only addresses without a domain part, got %v", empty)
	}
}

func TestGroupEmailsByDomain(t *testing.T) {
	users := []domain.User{
		{ID: 1, Email: "zed@example.com"},
		{ID: 2, Email: "bob@other.org"},
		{ID: 3, Email: "ana@example.com"},
	}

	groups := domain.GroupEmailsByDomain(users)
	if len(groups) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(groups))
	}
	example := groups["example.com"]
	if len(example) != 2 || example[0] != "ana@example.com" || example[1] != "zed@example.com" {
		t.Fatalf("unexpected example.com group: %v", example)
	}
	if len(groups["other.org"]) != 1 {
		t.Fatalf("unexpected other.org group: %v", groups["other.org"])
	}
}
