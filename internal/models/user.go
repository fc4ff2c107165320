package models

import "time"

// Settings enums. The settings record stores display and behavior
// preferences; every field has a documented default applied on read.
var (
	DateFormats      = []string{"DD/MM/YYYY", "MM/DD/YYYY", "YYYY-MM-DD"}
	Themes           = []string{"light", "dark"}
	Languages        = []string{"en", "pl", "es", "fr"}
	RetentionPeriods = []string{"6months", "1year", "2years", "forever"}
)

// IsValidDateFormat reports whether f is a supported date format.
func IsValidDateFormat(f string) bool { return contains(DateFormats, f) }

// IsValidTheme reports whether t is a supported theme.
func IsValidTheme(t string) bool { return contains(Themes, t) }

// IsValidLanguage reports whether l is a supported language.
func IsValidLanguage(l string) bool { return contains(Languages, l) }

// IsValidRetention reports whether r is a supported data-retention policy.
func IsValidRetention(r string) bool { return contains(RetentionPeriods, r) }

// Settings holds per-user preferences, embedded in the users table.
type Settings struct {
	DefaultCurrency    string  `gorm:"size:3;default:PLN" json:"defaultCurrency"`
	DateFormat         string  `gorm:"size:10;default:DD/MM/YYYY" json:"preferredDateFormat"`
	CustomName         string  `gorm:"size:100" json:"customName"`
	Theme              string  `gorm:"size:10;default:light" json:"preferredTheme"`
	Language           string  `gorm:"size:5;default:en" json:"language"`
	NotifyPush         bool    `gorm:"default:true" json:"notifyPush"`
	NotifyEmail        bool    `gorm:"default:false" json:"notifyEmail"`
	NotifyBudgetAlerts bool    `gorm:"default:true" json:"notifyBudgetAlerts"`
	MonthlyLimit       float64 `gorm:"default:0" json:"monthlyLimit"`
	DataRetention      string  `gorm:"size:10;default:1year" json:"dataRetention"`
}

// DefaultSettings returns the canonical default preference table.
func DefaultSettings() Settings {
	return Settings{
		DefaultCurrency:    "PLN",
		DateFormat:         "DD/MM/YYYY",
		Theme:              "light",
		Language:           "en",
		NotifyPush:         true,
		NotifyEmail:        false,
		NotifyBudgetAlerts: true,
		MonthlyLimit:       0,
		DataRetention:      "1year",
	}
}

// ApplyDefaults fills any unset enum field with its documented default.
// Boolean and numeric fields keep their stored values; they are written
// explicitly at user creation.
func (s *Settings) ApplyDefaults() {
	d := DefaultSettings()
	if s.DefaultCurrency == "" {
		s.DefaultCurrency = d.DefaultCurrency
	}
	if s.DateFormat == "" {
		s.DateFormat = d.DateFormat
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.Language == "" {
		s.Language = d.Language
	}
	if s.DataRetention == "" {
		s.DataRetention = d.DataRetention
	}
}

// User represents an account created on first external-identity
// sign-in. The identifier is immutable and email is globally unique.
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Name             string     `gorm:"size:255" json:"name,omitempty"`
	GivenName        string     `gorm:"size:100" json:"givenName,omitempty"`
	FamilyName       string     `gorm:"size:100" json:"familyName,omitempty"`
	AvatarURL        string     `gorm:"size:512" json:"image,omitempty"`
	Locale           string     `gorm:"size:10" json:"locale,omitempty"`
	Providers        []string   `gorm:"serializer:json" json:"providers"`
	RefreshTokenHash string     `gorm:"size:72" json:"-"`
	LastSignInAt     *time.Time `json:"lastSignInAt,omitempty"`

	Settings Settings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	TransactionRefs []TransactionRef `gorm:"foreignKey:UserID" json:"-"`
}
