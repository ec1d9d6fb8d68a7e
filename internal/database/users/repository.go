// Package users provides database operations for user and profile management.
//
// A profile is created in the same transaction as its user, so every user has
// exactly one profile from the moment it exists.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.CreateUser("reader", "reader@example.com")
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// ErrNotFound is returned when a user or profile does not exist.
var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a user together with its empty profile. The profile is
// created synchronously in the same transaction, never by an implicit hook,
// so the 1:1 invariant holds from creation onward.
func (r *Repository) CreateUser(username, email string) (*entities.User, error) {
	user := &entities.User{
		Username: username,
		Email:    email,
		Role:     entities.UserRoleUser,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile := &entities.UserProfile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		user.Profile = *profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetProfile retrieves a user's profile.
func (r *Repository) GetProfile(userID uint) (*entities.UserProfile, error) {
	var profile entities.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile saves edits to the descriptive profile fields. The derived
// counters are owned by the engagement repository and are not written here.
func (r *Repository) UpdateProfile(userID uint, bio, profilePic, favoriteGenre, websiteURL string) (*entities.UserProfile, error) {
	profile, err := r.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"bio":            bio,
		"profile_pic":    profilePic,
		"favorite_genre": favoriteGenre,
		"website_url":    websiteURL,
	}
	if err := r.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
