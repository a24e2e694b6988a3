package models

import (
	"testing"
	"time"
)

func TestProductFinalPrice(t *testing.T) {
	p := Product{Price: 100}
	if got := p.FinalPrice(); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}

	discount := 75.0
	p.DiscountPrice = &discount
	if got := p.FinalPrice(); got != 75 {
		t.Fatalf("expected discount price 75, got %v", got)
	}
}

func TestProductStockFlags(t *testing.T) {
	p := Product{Stock: 0, LowStockThreshold: 5}
	if p.IsInStock() {
		t.Fatal("zero stock should not be in stock")
	}
	if p.IsLowStock() {
		t.Fatal("zero stock should not count as low stock")
	}

	p.Stock = 3
	if !p.IsInStock() || !p.IsLowStock() {
		t.Fatal("stock at 3 with threshold 5 should be in stock and low")
	}

	p.Stock = 50
	if p.IsLowStock() {
		t.Fatal("stock well above threshold should not be low")
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: 19.90}
	want := 3 * 19.90
	if got := item.Subtotal(); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOrderShippingFlags(t *testing.T) {
	o := Order{ShippingStatus: ShippingPending}
	if o.IsTrackable() {
		t.Fatal("order without tracking number should not be trackable")
	}
	if o.CanBeDelivered() {
		t.Fatal("pending order should not be deliverable")
	}

	o.TrackingNumber = "TRK-001"
	o.ShippingStatus = ShippingInTransit
	if !o.IsTrackable() || !o.CanBeDelivered() {
		t.Fatal("in-transit order with tracking number should be trackable and deliverable")
	}

	o.ShippingStatus = ShippingDelivered
	if o.CanBeDelivered() {
		t.Fatal("delivered order is past the deliverable legs")
	}
}

func TestMembershipLifecycle(t *testing.T) {
	m := Membership{
		Status:  MembershipActive,
		EndDate: time.Now().Add(48 * time.Hour),
	}
	if m.IsExpired() {
		t.Fatal("membership ending in two days should not be expired")
	}
	if days := m.DaysRemaining(); days < 1 || days > 2 {
		t.Fatalf("expected 1-2 days remaining, got %d", days)
	}

	m.Refresh()
	if m.Status != MembershipActive {
		t.Fatal("refresh must not touch an unexpired membership")
	}

	m.EndDate = time.Now().Add(-time.Hour)
	m.Refresh()
	if m.Status != MembershipExpired {
		t.Fatalf("expected expired status, got %s", m.Status)
	}
	if m.DaysRemaining() != 0 {
		t.Fatal("expired membership should report zero days remaining")
	}

	cancelled := Membership{Status: MembershipCancelled, EndDate: time.Now().Add(-time.Hour)}
	cancelled.Refresh()
	if cancelled.Status != MembershipCancelled {
		t.Fatal("refresh must not touch a cancelled membership")
	}
}

func TestVaccineNextDosePending(t *testing.T) {
	v := Vaccine{}
	if v.IsNextDosePending() {
		t.Fatal("vaccine without next dose date has nothing pending")
	}

	future := time.Now().Add(72 * time.Hour)
	v.NextDoseDate = &future
	if !v.IsNextDosePending() {
		t.Fatal("future next dose should be pending")
	}

	past := time.Now().Add(-72 * time.Hour)
	v.NextDoseDate = &past
	if v.IsNextDosePending() {
		t.Fatal("past next dose should not be pending")
	}
}

func TestUserDisplayName(t *testing.T) {
	u := User{Username: "mrodriguez"}
	if got := u.DisplayName(); got != "mrodriguez" {
		t.Fatalf("expected username fallback, got %q", got)
	}

	u.FirstName = "Maria"
	u.LastName = "Rodriguez"
	if got := u.DisplayName(); got != "Maria Rodriguez" {
		t.Fatalf("expected full name, got %q", got)
	}
}
