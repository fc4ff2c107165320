package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Currencies is the set of currencies a transaction or settings record
// may carry.
var Currencies = []string{"PLN", "USD", "EUR", "GBP"}

// ExpenseCategories is the fixed classification set for expense
// transactions.
var ExpenseCategories = []string{
	"Survival",
	"Growth",
	"Fun",
	"Restaurants",
	"Mobility",
	"Groceries",
	"Other",
}

// IncomeTypes is the fixed classification set for income transactions,
// stored lowercase.
var IncomeTypes = []string{"salary", "investment", "transfer", "gift", "other", "refund"}

// IncomeTypeRefund is the only income type that may carry a return
// percentage.
const IncomeTypeRefund = "refund"

// IsValidCurrency reports whether c is one of the supported currencies.
func IsValidCurrency(c string) bool { return contains(Currencies, c) }

// IsValidExpenseCategory reports whether c is a fixed expense category.
func IsValidExpenseCategory(c string) bool { return contains(ExpenseCategories, c) }

// IsValidIncomeType reports whether t is a fixed income source type.
// Callers must lowercase t first; stored values are always lowercase.
func IsValidIncomeType(t string) bool { return contains(IncomeTypes, t) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Transaction represents a single recorded income or expense event
// owned by a user. Expense records carry Category from the fixed
// expense set; income records carry IncomeType from the fixed income
// set, never both.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`
	Type        TransactionType `gorm:"size:10;not null" json:"type"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Category    string          `gorm:"size:100" json:"category,omitempty"`
	Source      string          `gorm:"size:255" json:"source,omitempty"`

	// Income only
	IncomeType       string   `gorm:"size:20" json:"incomeType,omitempty"`
	ReturnPercentage *float64 `json:"returnPercentage,omitempty"`

	// Optional reference to another transaction owned by the same
	// user, e.g. a refund pointing at the original expense.
	LinkedTransactionID *string `gorm:"type:uuid" json:"linkedTransactionId,omitempty"`

	Notes string `gorm:"size:500" json:"notes,omitempty"`
}

// TransactionRef is the owner-side entry of a user's transaction list.
// A ref row and its transaction row are always written and removed
// together inside one database transaction; neither may exist without
// the other.
type TransactionRef struct {
	UserID        string    `gorm:"type:uuid;primaryKey" json:"userId"`
	TransactionID string    `gorm:"type:uuid;primaryKey" json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}
