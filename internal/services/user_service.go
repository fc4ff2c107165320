package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// SignIn upserts a user from an external-identity profile. First
// sign-in creates the user with default settings; a repeat sign-in
// refreshes profile fields and merges the provider into the linked
// provider list. The identifier never changes once created.
func (s *userService) SignIn(profile ExternalProfile) (*models.User, error) {
	if profile.Email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "email: is required")
	}
	if profile.Provider == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "provider: is required")
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	now := time.Now()

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:        email,
			Name:         profile.Name,
			GivenName:    profile.GivenName,
			FamilyName:   profile.FamilyName,
			AvatarURL:    profile.AvatarURL,
			Locale:       profile.Locale,
			Providers:    []string{profile.Provider},
			LastSignInAt: &now,
			Settings:     models.DefaultSettings(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Repeat sign-in: refresh the profile, merge the provider.
	if profile.Name != "" {
		user.Name = profile.Name
	}
	if profile.GivenName != "" {
		user.GivenName = profile.GivenName
	}
	if profile.FamilyName != "" {
		user.FamilyName = profile.FamilyName
	}
	if profile.AvatarURL != "" {
		user.AvatarURL = profile.AvatarURL
	}
	if profile.Locale != "" {
		user.Locale = profile.Locale
	}
	if !hasProvider(user.Providers, profile.Provider) {
		user.Providers = append(user.Providers, profile.Provider)
	}
	user.LastSignInAt = &now

	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func hasProvider(providers []string, p string) bool {
	for _, existing := range providers {
		if existing == p {
			return true
		}
	}
	return false
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// StoreRefreshTokenHash bcrypt-hashes the refresh token digest and
// stores it on the user, replacing any previous one.
func (s *userService) StoreRefreshTokenHash(userID, tokenDigest string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(tokenDigest), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", string(hash))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// VerifyRefreshTokenDigest compares the presented token digest against
// the stored bcrypt hash. A mismatch means the token was rotated or
// never issued.
func (s *userService) VerifyRefreshTokenDigest(userID, tokenDigest string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.RefreshTokenHash == "" {
		return apperrors.ErrInvalidRefreshToken
	}
	if bcrypt.CompareHashAndPassword([]byte(user.RefreshTokenHash), []byte(tokenDigest)) != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return nil
}
