package identity

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newTestPostgres connects to TIPSLAP_TEST_DATABASE_URL or skips.
func newTestPostgres(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("TIPSLAP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TIPSLAP_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	repo := NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return repo
}

func TestPostgresRepositoryLifecycle(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	user := User{
		ID:             uuid.NewString(),
		Phone:          "+1555" + suffix,
		BalanceCents:   5_400,
		CanGiveTips:    true,
		CanReceiveTips: true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, User{ID: uuid.NewString(), Phone: user.Phone, CreatedAt: time.Now()}); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}

	found, err := repo.FindByPhone(ctx, user.Phone)
	if err != nil || found.ID != user.ID || found.HasProfile() {
		t.Fatalf("find by phone: %+v %v", found, err)
	}

	alias := "pg_" + suffix
	updated, err := repo.UpdateProfile(ctx, user.ID, ProfileInput{FullName: "Pg Tester", Alias: alias, CanGiveTips: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.HasProfile() || updated.Alias != alias {
		t.Fatalf("unexpected profile %+v", updated)
	}

	other := User{ID: uuid.NewString(), Phone: "+1556" + suffix, CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := repo.UpdateProfile(ctx, other.ID, ProfileInput{FullName: "Other", Alias: "PG_" + suffix}); !errors.Is(err, ErrAliasTaken) {
		t.Fatalf("expected ErrAliasTaken, got %v", err)
	}

	results, err := repo.Search(ctx, suffix, other.ID, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != user.ID {
		t.Fatalf("unexpected search results %+v", results)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
