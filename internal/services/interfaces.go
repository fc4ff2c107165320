package services

import (
	"time"

	"github.com/xuri/excelize/v2"

	"saldo/internal/models"
	"saldo/internal/pagination"
)

// ExternalProfile carries the identity asserted by the external
// sign-in provider. Verification of the assertion happens upstream;
// this service trusts the profile it is handed.
type ExternalProfile struct {
	Provider   string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	AvatarURL  string
	Locale     string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	SignIn(profile ExternalProfile) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenDigest string) error
	VerifyRefreshTokenDigest(userID, tokenDigest string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TransactionType
	Category *string
}

// MonthlySummary aggregates the current month's transactions for the
// dashboard.
type MonthlySummary struct {
	TotalIncome       float64            `json:"totalIncome"`
	TotalExpenses     float64            `json:"totalExpenses"`
	Balance           float64            `json:"balance"`
	TransactionCount  int64              `json:"transactionCount"`
	ExpenseByCategory map[string]float64 `json:"expenseByCategory"`
	IncomeByType      map[string]float64 `json:"incomeByType"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	Create(userID string, input TransactionInput) (*models.Transaction, error)
	Get(userID, transactionID string) (*models.Transaction, error)
	Update(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	Delete(userID, transactionID string) error
	ListCurrentMonth(userID string) ([]models.Transaction, error)
	List(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	Summary(userID string) (*MonthlySummary, error)
}

// SettingsUpdate holds a partial settings payload. Nil fields are left
// untouched (merge semantics, never replace).
type SettingsUpdate struct {
	DefaultCurrency *string
	DateFormat      *string
	CustomName      *string
	Theme           *string
	Language        *string
	Notifications   *NotificationsUpdate
	Budget          *BudgetUpdate
	Privacy         *PrivacyUpdate
}

// NotificationsUpdate is the nested notification-flag subset.
type NotificationsUpdate struct {
	Push         *bool
	Email        *bool
	BudgetAlerts *bool
}

// BudgetUpdate is the nested budget subset.
type BudgetUpdate struct {
	MonthlyLimit *float64
}

// PrivacyUpdate is the nested privacy subset.
type PrivacyUpdate struct {
	DataRetention *string
}

// SettingsServicer defines the contract for settings operations.
type SettingsServicer interface {
	Get(userID string) (*models.Settings, error)
	Update(userID string, update SettingsUpdate) (*models.Settings, error)
}

// ExportServicer renders a user's transactions as a spreadsheet.
type ExportServicer interface {
	ExportXLSX(userID string, filter TransactionFilter) (*excelize.File, error)
}
