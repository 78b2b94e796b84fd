package service

import (
	"context"
	"errors"
	"testing"

	"daylist/internal/apperr"
	"daylist/internal/model"
	"daylist/internal/repository"
)

func newTestProfileService(t *testing.T) *ProfileService {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return NewProfileService(repository.NewProfileRepository(db))
}

func TestProfileAbsentThenPresent(t *testing.T) {
	svc := newTestProfileService(t)
	ctx := context.Background()

	profile, err := svc.Get(ctx, "u1")
	if err != nil || profile != nil {
		t.Fatalf("get = (%v, %v), want absent without error", profile, err)
	}
	has, err := svc.Has(ctx, "u1")
	if err != nil || has {
		t.Fatalf("has = (%v, %v), want false", has, err)
	}

	if _, err := svc.Upsert(ctx, "u1", "  Ada  ", 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	profile, err = svc.Get(ctx, "u1")
	if err != nil || profile == nil {
		t.Fatalf("get after upsert = (%v, %v)", profile, err)
	}
	if profile.FullName != "Ada" {
		t.Errorf("name = %q, want trimmed", profile.FullName)
	}
	if profile.AvatarID != model.DefaultAvatarID {
		t.Errorf("avatar = %d, want default %d", profile.AvatarID, model.DefaultAvatarID)
	}

	has, err = svc.Has(ctx, "u1")
	if err != nil || !has {
		t.Errorf("has = (%v, %v), want true", has, err)
	}
}

func TestProfileUpsertRejectsEmptyName(t *testing.T) {
	svc := newTestProfileService(t)

	if _, err := svc.Upsert(context.Background(), "u1", "   ", 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
