package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"saldo/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with default settings and a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		Email:        email,
		Name:         fmt.Sprintf("Test User %d", nextID()),
		Providers:    []string{"google"},
		LastSignInAt: &now,
		Settings:     models.DefaultSettings(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense creates an expense transaction with its owner ref.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, amount float64, category string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeExpense,
		Amount:      amount,
		Currency:    "PLN",
		Date:        date,
		Description: fmt.Sprintf("Test expense %d", nextID()),
		Category:    category,
	}
	insertTestTransaction(t, db, tx)
	return tx
}

// CreateTestIncome creates an income transaction with its owner ref.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, amount float64, incomeType string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionTypeIncome,
		Amount:      amount,
		Currency:    "PLN",
		Date:        date,
		Description: fmt.Sprintf("Test income %d", nextID()),
		IncomeType:  incomeType,
	}
	insertTestTransaction(t, db, tx)
	return tx
}

func insertTestTransaction(t *testing.T, db *gorm.DB, tx *models.Transaction) {
	t.Helper()

	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	ref := &models.TransactionRef{UserID: tx.UserID, TransactionID: tx.ID}
	if err := db.Create(ref).Error; err != nil {
		t.Fatalf("failed to create test transaction ref: %v", err)
	}
}
