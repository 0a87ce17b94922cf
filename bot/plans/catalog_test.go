package plans

import (
	"errors"
	"testing"
)

func TestDefaultCatalogOrderAndPrices(t *testing.T) {
	c := Default()
	all := c.All()
	want := []struct {
		id    string
		price int64
		days  int
		label string
	}{
		{"1_month", 99, 30, "1 Month - ₹99"},
		{"3_months", 249, 90, "3 Months - ₹249"},
		{"6_months", 499, 180, "6 Months - ₹499"},
	}
	if len(all) != len(want) {
		t.Fatalf("plans = %d, want %d", len(all), len(want))
	}
	for i, w := range want {
		p := all[i]
		if p.ID != w.id || p.Price != w.price || p.DurationDays != w.days {
			t.Fatalf("plan %d = %+v, want %+v", i, p, w)
		}
		if got := p.ButtonLabel(); got != w.label {
			t.Fatalf("label %d = %q, want %q", i, got, w.label)
		}
	}
}

func TestGetUnknownPlan(t *testing.T) {
	_, err := Default().Get("12_months")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("err = %v, want ErrUnknownPlan", err)
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	p := Plan{ID: "x", Name: "X", Price: 1, DurationDays: 30}
	if _, err := NewCatalog(p, p); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if _, err := NewCatalog(Plan{ID: " ", Price: 1, DurationDays: 1}); err == nil {
		t.Fatal("expected empty id error")
	}
	if _, err := NewCatalog(Plan{ID: "free", Price: 0, DurationDays: 1}); err == nil {
		t.Fatal("expected price error")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Price = 1
	p, err := c.Get("1_month")
	if err != nil {
		t.Fatal(err)
	}
	if p.Price != 99 {
		t.Fatalf("catalog mutated through All(): price=%d", p.Price)
	}
}
