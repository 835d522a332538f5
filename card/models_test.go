package card

import (
	"testing"
	"time"

	"github.com/xraph/billing/id"
)

func TestComputeExpiryDate(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  time.Time
	}{
		{"january", 30, 1, time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"april has 30 days", 30, 4, time.Date(2030, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"february non-leap", 29, 2, time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"february leap", 28, 2, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"december rolls into next year", 30, 12, time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExpiryDate(tt.year, tt.month)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	c := New(id.NewAccountID(), "VIS", "4242 **** **** 4242", 6, 30, "vis:card-ref")

	tests := []struct {
		name string
		asOf time.Time
		want bool
	}{
		{"well before expiry", time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"on expiry day", time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC), true},
		{"expiry day with time of day", time.Date(2030, 6, 30, 23, 59, 0, 0, time.UTC), true},
		{"day after expiry", time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsValid(tt.asOf); got != tt.want {
				t.Errorf("IsValid(%v) = %v, want %v", tt.asOf, got, tt.want)
			}
		})
	}
}

func TestIsUsable(t *testing.T) {
	asOf := time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(id.NewAccountID(), "VIS", "4242 **** **** 4242", 6, 30, "vis:card-ref")

	if !c.IsUsable(asOf) {
		t.Error("active unexpired card should be usable")
	}
	if err := c.Deactivate(); err != nil {
		t.Fatal(err)
	}
	if c.IsUsable(asOf) {
		t.Error("inactive card should not be usable")
	}
	// Still valid though: validity ignores the active flag.
	if !c.IsValid(asOf) {
		t.Error("inactive card should still be valid while unexpired")
	}
}

func TestStatusTransitions(t *testing.T) {
	c := New(id.NewAccountID(), "ECA", "5500 **** **** 0004", 1, 31, "eca:card-ref")

	if c.Status != StatusActive {
		t.Fatalf("new card should be active, got %s", c.Status)
	}
	if err := c.Reactivate(); err == nil {
		t.Error("reactivating an active card should fail")
	}
	if err := c.Deactivate(); err != nil {
		t.Fatal(err)
	}
	if c.Status != StatusInactive {
		t.Errorf("got %s, want inactive", c.Status)
	}
	if err := c.Deactivate(); err == nil {
		t.Error("deactivating an inactive card should fail")
	}
	if err := c.Reactivate(); err != nil {
		t.Fatal(err)
	}
	if c.Status != StatusActive {
		t.Errorf("got %s, want active", c.Status)
	}
}
