package service

import (
	"context"
	"fmt"
	"strings"

	"daylist/internal/apperr"
	"daylist/internal/model"
	"daylist/internal/repository"
)

// ProfileService wraps profile lookup and upsert. A user without a profile
// is a normal state that routes them to setup, not a failure.
type ProfileService struct {
	repo *repository.ProfileRepository
}

func NewProfileService(repo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the profile, or (nil, nil) when none exists yet.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.repo.GetByUser(ctx, userID)
}

// Has reports whether the user finished profile setup.
func (s *ProfileService) Has(ctx context.Context, userID string) (bool, error) {
	profile, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return profile != nil, nil
}

// Upsert saves the display name and avatar choice, creating the row on first
// save and overwriting it afterwards.
func (s *ProfileService) Upsert(ctx context.Context, userID, fullName string, avatarID int) (*model.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if avatarID <= 0 {
		avatarID = model.DefaultAvatarID
	}
	return s.repo.Upsert(ctx, userID, fullName, avatarID)
}
