package service

import (
	"context"
	"strings"

	"prok/internal/models"
	"prok/internal/repository"
)

// UserService handles profile reads and updates.
type UserService struct {
	userRepo repository.UserRepository
}

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Title     *string `json:"title"`
	Bio       *string `json:"bio"`
	Skills    *string `json:"skills"`
	Location  *string `json:"location"`
	Phone     *string `json:"phone"`
	Languages *string `json:"languages"`
}

// NewUserService returns a UserService backed by the given repository.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the user with the given id.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies a partial update to the user's profile fields and
// persists the result. The user is loaded fresh from the store, not the
// cache: a cached copy has no password hash and saving it would blank the
// column.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.Title, update.Title)
	apply(&user.Bio, update.Bio)
	apply(&user.Skills, update.Skills)
	apply(&user.Location, update.Location)
	apply(&user.Phone, update.Phone)
	apply(&user.Languages, update.Languages)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAvatar stores the new avatar URL on the user's profile. Loads fresh
// for the same reason as UpdateProfile.
func (s *UserService) SetAvatar(ctx context.Context, id uint, url string) (*models.User, error) {
	user, err := s.userRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Avatar = url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
