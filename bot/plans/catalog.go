// Package plans holds the static membership plan catalog.
package plans

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlan is returned when a plan id is not part of the catalog.
var ErrUnknownPlan = errors.New("plans: unknown plan")

// Plan describes an offerable membership plan. Price is in whole rupees.
type Plan struct {
	ID           string
	Name         string
	Price        int64
	DurationDays int
	Description  string
}

// ButtonLabel renders the short label used on the plan menu, e.g. "3 Months - ₹249".
func (p Plan) ButtonLabel() string {
	months := p.DurationDays / 30
	unit := "Months"
	if months == 1 {
		unit = "Month"
	}
	return fmt.Sprintf("%d %s - ₹%d", months, unit, p.Price)
}

// Catalog is a read-only, ordered plan table.
type Catalog struct {
	order []string
	byID  map[string]Plan
}

// NewCatalog builds a catalog preserving the given order. Duplicate or empty ids are rejected.
func NewCatalog(items ...Plan) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Plan, len(items))}
	for _, p := range items {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("plans: empty plan id")
		}
		if p.Price <= 0 || p.DurationDays <= 0 {
			return nil, fmt.Errorf("plans: plan %q must have positive price and duration", id)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("plans: duplicate plan id %q", id)
		}
		p.ID = id
		c.byID[id] = p
		c.order = append(c.order, id)
	}
	return c, nil
}

// Default returns the catalog offered by the bot.
func Default() *Catalog {
	c, err := NewCatalog(
		Plan{
			ID:           "1_month",
			Name:         "1 Month Premium",
			Price:        99,
			DurationDays: 30,
			Description:  "Access to all premium groups for 1 month",
		},
		Plan{
			ID:           "3_months",
			Name:         "3 Months Premium",
			Price:        249,
			DurationDays: 90,
			Description:  "Access to all premium groups for 3 months (Save ₹48)",
		},
		Plan{
			ID:           "6_months",
			Name:         "6 Months Premium",
			Price:        499,
			DurationDays: 180,
			Description:  "Access to all premium groups for 6 months (Save ₹95)",
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up a plan by id.
func (c *Catalog) Get(id string) (Plan, error) {
	if c == nil {
		return Plan{}, ErrUnknownPlan
	}
	p, ok := c.byID[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return p, nil
}

// All returns plans in menu order.
func (c *Catalog) All() []Plan {
	if c == nil {
		return nil
	}
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
