package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"daylist/internal/apperr"
	"daylist/internal/model"
)

// ProfileRepository manages the one-row-per-user profile table.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUser returns the caller's profile, or (nil, nil) when no profile
// exists yet. A missing row and a not-yet-provisioned table both count as
// absent; any other backend error propagates.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	switch {
	case err == nil:
		return &profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound), isMissingTable(err):
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: find profile: %v", apperr.ErrStoreUnavailable, err)
	}
}

// Upsert inserts the profile on first save and overwrites it afterwards,
// keyed on the owning user.
func (r *ProfileRepository) Upsert(ctx context.Context, userID, fullName string, avatarID int) (*model.Profile, error) {
	db := r.db.WithContext(ctx)

	var profile model.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case err == nil:
		profile.FullName = fullName
		profile.AvatarID = avatarID
		if err := db.Save(&profile).Error; err != nil {
			return nil, fmt.Errorf("%w: update profile: %v", apperr.ErrStoreUnavailable, err)
		}
		return &profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = model.Profile{
			ID:       uuid.NewString(),
			UserID:   userID,
			FullName: fullName,
			AvatarID: avatarID,
		}
		if err := db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("%w: create profile: %v", apperr.ErrStoreUnavailable, err)
		}
		return &profile, nil
	default:
		return nil, fmt.Errorf("%w: find profile: %v", apperr.ErrStoreUnavailable, err)
	}
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
