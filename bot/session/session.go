// Package session stores each user's current plan selection.
package session

import (
	"context"
	"time"
)

// Session is the plan selection of a single user.
type Session struct {
	UserID      int64     `json:"user_id"`
	PlanID      string    `json:"plan_id"`
	SelectedAt  time.Time `json:"selected_at"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
}

// Store keeps at most one session per user. Put overwrites.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Delete(ctx context.Context, userID int64) error
}
