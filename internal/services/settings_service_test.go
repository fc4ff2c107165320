package services

import (
	"strings"
	"testing"

	"saldo/internal/models"
	"saldo/internal/testutil"
)

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestSettingsGet(t *testing.T) {
	t.Run("returns_defaults_for_new_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		settings, err := svc.Get(user.ID)
		testutil.AssertNoError(t, err)

		want := models.DefaultSettings()
		if settings.DefaultCurrency != want.DefaultCurrency {
			t.Errorf("expected currency %s, got %s", want.DefaultCurrency, settings.DefaultCurrency)
		}
		if settings.DateFormat != want.DateFormat {
			t.Errorf("expected date format %s, got %s", want.DateFormat, settings.DateFormat)
		}
		if settings.Theme != "light" || settings.Language != "en" {
			t.Errorf("expected light/en defaults, got %s/%s", settings.Theme, settings.Language)
		}
		if !settings.NotifyPush || settings.NotifyEmail || !settings.NotifyBudgetAlerts {
			t.Errorf("unexpected notification defaults: %+v", settings)
		}
		if settings.MonthlyLimit != 0 || settings.DataRetention != "1year" {
			t.Errorf("unexpected budget/privacy defaults: %+v", settings)
		}
	})

	t.Run("fills_unset_enum_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		// Simulate a record written before defaults existed.
		if err := db.Model(user).Updates(map[string]interface{}{
			"settings_default_currency": "",
			"settings_theme":            "",
		}).Error; err != nil {
			t.Fatalf("failed to blank settings: %v", err)
		}

		settings, err := svc.Get(user.ID)
		testutil.AssertNoError(t, err)
		if settings.DefaultCurrency != "PLN" || settings.Theme != "light" {
			t.Errorf("expected defaults applied on read, got %s/%s", settings.DefaultCurrency, settings.Theme)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)

		_, err := svc.Get("0198c5b6-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestSettingsUpdate(t *testing.T) {
	t.Run("merges_provided_fields_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		settings, err := svc.Update(user.ID, SettingsUpdate{
			DefaultCurrency: strPtr("EUR"),
			Theme:           strPtr("dark"),
		})
		testutil.AssertNoError(t, err)

		if settings.DefaultCurrency != "EUR" {
			t.Errorf("expected EUR, got %s", settings.DefaultCurrency)
		}
		if settings.Theme != "dark" {
			t.Errorf("expected dark, got %s", settings.Theme)
		}
		// Untouched fields keep their stored values.
		if settings.DateFormat != "DD/MM/YYYY" || settings.Language != "en" {
			t.Errorf("expected untouched fields preserved, got %+v", settings)
		}
	})

	t.Run("nested_notification_flags", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		settings, err := svc.Update(user.ID, SettingsUpdate{
			Notifications: &NotificationsUpdate{Email: boolPtr(true), Push: boolPtr(false)},
		})
		testutil.AssertNoError(t, err)

		if !settings.NotifyEmail || settings.NotifyPush {
			t.Errorf("expected email on, push off, got %+v", settings)
		}
		if !settings.NotifyBudgetAlerts {
			t.Error("expected untouched budget alerts flag")
		}
	})

	t.Run("budget_and_privacy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		settings, err := svc.Update(user.ID, SettingsUpdate{
			Budget:  &BudgetUpdate{MonthlyLimit: floatPtr(2500)},
			Privacy: &PrivacyUpdate{DataRetention: strPtr("forever")},
		})
		testutil.AssertNoError(t, err)

		if settings.MonthlyLimit != 2500 {
			t.Errorf("expected monthly limit 2500, got %v", settings.MonthlyLimit)
		}
		if settings.DataRetention != "forever" {
			t.Errorf("expected forever, got %s", settings.DataRetention)
		}
	})

	t.Run("custom_name_length_counts_characters_not_bytes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		settings, err := svc.Update(user.ID, SettingsUpdate{
			CustomName: strPtr(strings.Repeat("ż", 100)),
		})
		testutil.AssertNoError(t, err)
		if settings.CustomName != strings.Repeat("ż", 100) {
			t.Errorf("expected 100-character name stored, got %q", settings.CustomName)
		}

		_, err = svc.Update(user.ID, SettingsUpdate{
			CustomName: strPtr(strings.Repeat("ż", 101)),
		})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("invalid_currency_rejects_whole_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Update(user.ID, SettingsUpdate{
			DefaultCurrency: strPtr("XYZ"),
			Theme:           strPtr("dark"),
		})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		// Nothing was written, including the valid field.
		settings, err := svc.Get(user.ID)
		testutil.AssertNoError(t, err)
		if settings.Theme != "light" {
			t.Errorf("expected theme unchanged, got %s", settings.Theme)
		}
	})

	t.Run("invalid_enum_values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		cases := []SettingsUpdate{
			{DateFormat: strPtr("YYYY/DD/MM")},
			{Theme: strPtr("solarized")},
			{Language: strPtr("de")},
			{Budget: &BudgetUpdate{MonthlyLimit: floatPtr(-1)}},
			{Privacy: &PrivacyUpdate{DataRetention: strPtr("3days")}},
		}
		for _, update := range cases {
			_, err := svc.Update(user.ID, update)
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		}
	})

	t.Run("no_recognized_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Update(user.ID, SettingsUpdate{})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingsService(db)

		_, err := svc.Update("0198c5b6-0000-7000-8000-000000000000", SettingsUpdate{Theme: strPtr("dark")})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
