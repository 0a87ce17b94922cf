//go:build integration

package payments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m3rciful/paybot/core/database"
)

func openTestDB(t *testing.T) *PostgresRepository {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	cfg := database.Config{URL: url, MigrationsDir: filepath.Join("..", "..", "migrations")}
	if err := cfg.Normalize(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := database.RunMigrations(ctx, cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`TRUNCATE payments, memberships, users RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPostgresRepository(db)
}

func TestPostgresCreatePendingAndList(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	first, err := repo.CreatePending(ctx, Submission{UserID: 11, Username: "bob", PlanID: "1_month", Amount: 99, ScreenshotRef: "a", SubmittedAt: at})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	// the second submission by the same user must not fail on the user upsert
	second, err := repo.CreatePending(ctx, Submission{UserID: 11, Username: "bob", PlanID: "6_months", Amount: 499, ScreenshotRef: "b", SubmittedAt: at.Add(time.Minute)})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Status != StatusPending || second.ID <= first.ID || second.UTR != nil || second.VerifiedAt != nil {
		t.Fatalf("rows = %+v %+v", first, second)
	}

	var plan, shot string
	row := repo.db.QueryRowxContext(ctx, `SELECT plan, screenshot_reference FROM payments WHERE id = $1`, first.ID)
	if err := row.Scan(&plan, &shot); err != nil || plan != "1_month" || shot != "a" {
		t.Fatalf("stored row plan=%q screenshot=%q err=%v", plan, shot, err)
	}

	list, err := repo.ListPending(ctx, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("list = %+v", list)
	}
}
