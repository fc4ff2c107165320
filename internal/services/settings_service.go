package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
)

// settingsService handles per-user preference reads and merges.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// Get returns the user's settings with documented defaults applied for
// any unset field.
func (s *settingsService) Get(userID string) (*models.Settings, error) {
	user, err := s.fetchUser(userID)
	if err != nil {
		return nil, err
	}
	settings := user.Settings
	settings.ApplyDefaults()
	return &settings, nil
}

// Update validates each provided field and merges it into the stored
// settings. The whole request is rejected on the first invalid value;
// absent fields are left untouched; the user's updated timestamp is
// refreshed. Returns the full updated record.
func (s *settingsService) Update(userID string, update SettingsUpdate) (*models.Settings, error) {
	user, err := s.fetchUser(userID)
	if err != nil {
		return nil, err
	}

	columns, err := settingsColumns(update)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "no valid settings fields to update")
	}

	if err := s.db.Model(user).Updates(columns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.Get(userID)
}

// settingsColumns converts a validated partial update into the
// settings_* column set. Pure; the returned error names the offending
// field.
func settingsColumns(u SettingsUpdate) (map[string]interface{}, error) {
	columns := map[string]interface{}{}

	if u.DefaultCurrency != nil {
		if !models.IsValidCurrency(*u.DefaultCurrency) {
			return nil, invalidField("defaultCurrency", "must be one of PLN, USD, EUR, GBP")
		}
		columns["settings_default_currency"] = *u.DefaultCurrency
	}
	if u.DateFormat != nil {
		if !models.IsValidDateFormat(*u.DateFormat) {
			return nil, invalidField("preferredDateFormat", "must be one of DD/MM/YYYY, MM/DD/YYYY, YYYY-MM-DD")
		}
		columns["settings_date_format"] = *u.DateFormat
	}
	if u.CustomName != nil {
		name := strings.TrimSpace(*u.CustomName)
		if utf8.RuneCountInString(name) > 100 {
			return nil, invalidField("customName", "must be at most 100 characters")
		}
		columns["settings_custom_name"] = name
	}
	if u.Theme != nil {
		if !models.IsValidTheme(*u.Theme) {
			return nil, invalidField("preferredTheme", "must be light or dark")
		}
		columns["settings_theme"] = *u.Theme
	}
	if u.Language != nil {
		if !models.IsValidLanguage(*u.Language) {
			return nil, invalidField("language", "must be one of en, pl, es, fr")
		}
		columns["settings_language"] = *u.Language
	}
	if u.Notifications != nil {
		if u.Notifications.Push != nil {
			columns["settings_notify_push"] = *u.Notifications.Push
		}
		if u.Notifications.Email != nil {
			columns["settings_notify_email"] = *u.Notifications.Email
		}
		if u.Notifications.BudgetAlerts != nil {
			columns["settings_notify_budget_alerts"] = *u.Notifications.BudgetAlerts
		}
	}
	if u.Budget != nil && u.Budget.MonthlyLimit != nil {
		if *u.Budget.MonthlyLimit < 0 {
			return nil, invalidField("budget.monthlyLimit", "must be a non-negative number")
		}
		columns["settings_monthly_limit"] = *u.Budget.MonthlyLimit
	}
	if u.Privacy != nil && u.Privacy.DataRetention != nil {
		if !models.IsValidRetention(*u.Privacy.DataRetention) {
			return nil, invalidField("privacy.dataRetention", "must be one of 6months, 1year, 2years, forever")
		}
		columns["settings_data_retention"] = *u.Privacy.DataRetention
	}

	return columns, nil
}

func (s *settingsService) fetchUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
