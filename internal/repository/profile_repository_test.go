package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"daylist/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func TestGetByUserAbsentIsNotAnError(t *testing.T) {
	repo := NewProfileRepository(newTestDB(t))

	profile, err := repo.GetByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if profile != nil {
		t.Fatalf("profile = %+v, want nil", profile)
	}
}

func TestGetByUserMissingTableIsAbsent(t *testing.T) {
	// A database without migrations stands in for a not-yet-provisioned table.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	repo := NewProfileRepository(db)

	profile, err := repo.GetByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err = %v, want nil for missing table", err)
	}
	if profile != nil {
		t.Fatalf("profile = %+v, want nil", profile)
	}
}

func TestUpsertCreatesThenOverwrites(t *testing.T) {
	repo := NewProfileRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Upsert(ctx, "u1", "Ada", 2)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if created.FullName != "Ada" || created.AvatarID != 2 {
		t.Fatalf("created = %+v", created)
	}

	updated, err := repo.Upsert(ctx, "u1", "Ada Lovelace", model.DefaultAvatarID)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("upsert created a second row: %s vs %s", updated.ID, created.ID)
	}
	if updated.FullName != "Ada Lovelace" || updated.AvatarID != model.DefaultAvatarID {
		t.Errorf("updated = %+v", updated)
	}

	var count int64
	if err := repo.db.Model(&model.Profile{}).Where("user_id = ?", "u1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("profile rows = %d, want 1", count)
	}
}
