package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func newFixedRepository() *shopRepositoryInMemory {
	repo := newShopRepository()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	return repo
}

func TestPlanUserCascade_DoesNotMutate(t *testing.T) {
	repo := newFixedRepository()
	user, _ := repo.CreateUser("ana", "ana@example.com", "secret")
	other, _ := repo.CreateUser("bob", "bob@example.com", "secret")
	_, _ = repo.CreateAddress(user.ID, domain.Address{Street: "a"})
	_, _ = repo.CreateAddress(other.ID, domain.Address{Street: "b"})
	_, _ = repo.CreateAddress(user.ID, domain.Address{Street: "c"})
	_, _ = repo.CreateProduct(domain.Product{ID: 1, PriceMinor: 10})
	_, _ = repo.AddProductToCart(user.ID, 1)

	plan := repo.planUserCascade(user.ID)
	if len(plan.addressIDs) != 2 || plan.addressIDs[0] != 1 || plan.addressIDs[1] != 3 {
		t.Fatalf("unexpected planned addresses: %v", plan.addressIDs)
	}
	if !plan.hasCart {
		t.Fatalf("expected cart in plan")
	}
	if len(repo.addresses) != 3 || len(repo.carts) != 1 {
		t.Fatalf("planning must not delete anything")
	}

	result := repo.applyUserCascade(plan)
	if len(result.AddressIDs) != 2 || result.Cart == nil {
		t.Fatalf("unexpected cascade result: %+v", result)
	}
	if len(repo.addresses) != 1 || len(repo.carts) != 0 {
		t.Fatalf("expected only foreign address left, got %d addresses, %d carts", len(repo.addresses), len(repo.carts))
	}
}

func TestApplyUserCascade_SkipsAlreadyRemoved(t *testing.T) {
	repo := newFixedRepository()
	user, _ := repo.CreateUser("ana", "ana@example.com", "secret")
	address, _ := repo.CreateAddress(user.ID, domain.Address{Street: "a"})

	plan := repo.planUserCascade(user.ID)
	delete(repo.addresses, address.ID)

	result := repo.applyUserCascade(plan)
	if len(result.AddressIDs) != 0 || result.Cart != nil {
		t.Fatalf("expected empty cascade, got %+v", result)
	}
}

func TestProductCascade_RecalculatesAffectedCarts(t *testing.T) {
	repo := newFixedRepository()
	ana, _ := repo.CreateUser("ana", "ana@example.com", "secret")
	bob, _ := repo.CreateUser("bob", "bob@example.com", "secret")
	_, _ = repo.CreateProduct(domain.Product{ID: 1, PriceMinor: 100})
	_, _ = repo.CreateProduct(domain.Product{ID: 2, PriceMinor: 30})
	_, _ = repo.AddProductToCart(ana.ID, 1)
	_, _ = repo.AddProductToCart(ana.ID, 2)
	_, _ = repo.AddProductToCart(ana.ID, 1)
	_, _ = repo.AddProductToCart(bob.ID, 2)

	plan := repo.planProductCascade(1)
	if len(plan.cartOwners) != 1 || plan.cartOwners[0] != ana.ID {
		t.Fatalf("unexpected planned carts: %v", plan.cartOwners)
	}

	delete(repo.products, 1)
	result := repo.applyProductCascade(plan)
	if result.RemovedRefs != 2 || len(result.Carts) != 1 {
		t.Fatalf("unexpected cascade result: %+v", result)
	}

	cart := repo.carts[ana.ID]
	if cart.ItemCount != 1 || cart.TotalPriceMinor != 30 {
		t.Fatalf("expected 1 item for 30, got %d/%d", cart.ItemCount, cart.TotalPriceMinor)
	}
	if cart.Contains(1) {
		t.Fatalf("deleted product still referenced")
	}
	if repo.carts[bob.ID].TotalPriceMinor != 30 {
		t.Fatalf("unaffected cart changed: %+v", repo.carts[bob.ID])
	}

	// Возвращённая копия не должна разделять срез с хранилищем.
	result.Carts[0].ProductIDs[0] = 99
	if repo.carts[ana.ID].ProductIDs[0] != 2 {
		t.Fatalf("cascade result shares memory with the store")
	}
}

func TestCheckConsistency_DetectsBrokenGraph(t *testing.T) {
	repo := newFixedRepository()
	user, _ := repo.CreateUser("ana", "ana@example.com", "secret")
	_, _ = repo.CreateProduct(domain.Product{ID: 1, PriceMinor: 10})
	_, _ = repo.AddProductToCart(user.ID, 1)
	_, _ = repo.CreateAddress(user.ID, domain.Address{Street: "a"})

	if err := repo.CheckConsistency(); err != nil {
		t.Fatalf("expected consistent store, got %v", err)
	}

	// Удаление в обход каскада оставляет висячие ссылки.
	delete(repo.users, user.ID)
	delete(repo.products, 1)

	err := repo.CheckConsistency()
	if err == nil {
		t.Fatalf("expected consistency error")
	}
	if !errors.Is(err, domain.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}
