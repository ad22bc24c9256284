package identity

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureByPhoneCreatesOnce(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, 5_400)
	ctx := context.Background()

	user, isNew, err := svc.EnsureByPhone(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !isNew {
		t.Fatal("expected a new account")
	}
	if user.BalanceCents != 5_400 || user.HasProfile() {
		t.Fatalf("unexpected new user %+v", user)
	}

	again, isNew, err := svc.EnsureByPhone(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if isNew || again.ID != user.ID {
		t.Fatalf("expected the existing account, got %+v (new=%v)", again, isNew)
	}
}

func TestUpdateProfileNormalizesAndRejectsTakenAlias(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, 0)
	ctx := context.Background()

	first, _, _ := svc.EnsureByPhone(ctx, "+15550000001")
	second, _, _ := svc.EnsureByPhone(ctx, "+15550000002")

	updated, err := svc.UpdateProfile(ctx, first.ID, ProfileInput{FullName: "  Jane Doe ", Alias: "@jane.doe", CanGiveTips: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Alias != "janedoe" || updated.FullName != "Jane Doe" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	if _, err := svc.UpdateProfile(ctx, second.ID, ProfileInput{FullName: "Other", Alias: "JaneDoe"}); !errors.Is(err, ErrAliasTaken) {
		t.Fatalf("expected ErrAliasTaken, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, first.ID, ProfileInput{FullName: "Jane", Alias: "janedoe"}); err != nil {
		t.Fatalf("keeping own alias must succeed: %v", err)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), 0)
	ctx := context.Background()
	user, _, _ := svc.EnsureByPhone(ctx, "+15550000001")

	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{FullName: " ", Alias: "jane"}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{FullName: "Jane", Alias: "@.-"}); !errors.Is(err, ErrAliasInvalid) {
		t.Fatalf("expected ErrAliasInvalid, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "missing", ProfileInput{FullName: "Jane", Alias: "jane"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProfileOnlyOnce(t *testing.T) {
	svc := NewService(NewMemoryRepository(), 0)
	ctx := context.Background()
	user, _, _ := svc.EnsureByPhone(ctx, "+15550000001")

	if _, err := svc.CreateProfile(ctx, user.ID, ProfileInput{FullName: "Jane", Alias: "jane"}); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := svc.CreateProfile(ctx, user.ID, ProfileInput{FullName: "Jane", Alias: "jane2"}); !errors.Is(err, ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc := NewService(NewMemoryRepository(), 0)
	ctx := context.Background()

	me, _, _ := svc.EnsureByPhone(ctx, "+15550000001")
	stacy, _, _ := svc.EnsureByPhone(ctx, "+15550000002")
	chris, _, _ := svc.EnsureByPhone(ctx, "+15550000003")
	_, _, _ = svc.EnsureByPhone(ctx, "+15550000004")

	_, _ = svc.UpdateProfile(ctx, me.ID, ProfileInput{FullName: "Stacy Me", Alias: "stacyme"})
	_, _ = svc.UpdateProfile(ctx, stacy.ID, ProfileInput{FullName: "Stacy Menken", Alias: "stacy"})
	_, _ = svc.UpdateProfile(ctx, chris.ID, ProfileInput{FullName: "Chris Brendler", Alias: "cbrendler"})

	found, err := svc.Search(ctx, me.ID, "@STAC", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != stacy.ID {
		t.Fatalf("expected only stacy, got %+v", found)
	}

	found, _ = svc.Search(ctx, me.ID, "brend", 0)
	if len(found) != 1 || found[0].Alias != "cbrendler" {
		t.Fatalf("expected full name match, got %+v", found)
	}

	found, _ = svc.Search(ctx, me.ID, "   ", 0)
	if len(found) != 0 {
		t.Fatalf("blank query must return nothing, got %+v", found)
	}
}
