package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
	"saldo/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// Create validates and persists a new transaction, then appends its
// identifier to the owner's transaction list. Both writes happen inside
// one database transaction: a failure on either side rolls back both.
func (s *transactionService) Create(userID string, input TransactionInput) (*models.Transaction, error) {
	input, err := normalizeCreate(input)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUserExists(userID); err != nil {
		return nil, err
	}

	if input.LinkedTransactionID != nil {
		if err := s.ensureLinkable(userID, *input.LinkedTransactionID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:              userID,
		Type:                input.Type,
		Amount:              input.Amount,
		Currency:            input.Currency,
		Date:                input.Date,
		Description:         input.Description,
		Category:            input.Category,
		Source:              input.Source,
		IncomeType:          input.IncomeType,
		ReturnPercentage:    input.ReturnPercentage,
		LinkedTransactionID: input.LinkedTransactionID,
		Notes:               input.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		ref := &models.TransactionRef{UserID: userID, TransactionID: transaction.ID}
		if err := tx.Create(ref).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Get retrieves a transaction scoped to its owner. A transaction that
// exists but belongs to someone else is reported as not found.
func (s *transactionService) Get(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// Update applies an allow-listed partial merge to an owned transaction.
func (s *transactionService) Update(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	existing, err := s.Get(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates, err := normalizeUpdate(existing.Type, update)
	if err != nil {
		return nil, err
	}

	if linked, ok := updates["linked_transaction_id"].(string); ok {
		if err := s.ensureLinkable(userID, linked); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Transaction{}).
			Where("id = ? AND user_id = ?", transactionID, userID).
			Updates(updates)
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrTransactionNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(userID, transactionID)
}

// Delete removes an owned transaction and pulls its identifier from the
// owner's transaction list. Both writes commit or roll back together so
// a dangling reference can never be observed.
func (s *transactionService) Delete(userID, transactionID string) error {
	transaction, err := s.Get(userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result := tx.Where("user_id = ? AND transaction_id = ?", userID, transactionID).
			Delete(&models.TransactionRef{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		return nil
	})
}

// ListCurrentMonth returns the owner's transactions dated inside the
// current calendar month, newest date first, creation time breaking
// ties.
func (s *transactionService) ListCurrentMonth(userID string) ([]models.Transaction, error) {
	start, end := monthWindow(time.Now())

	var transactions []models.Transaction
	if err := s.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// List returns a paginated, filtered view over all of the owner's
// transactions.
func (s *transactionService) List(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ? OR income_type = ?", *f.Category, *f.Category)
	}
	return q
}

// Summary aggregates the current month's transactions: income and
// expense totals, net balance, per-category expense totals, and
// per-source income totals.
func (s *transactionService) Summary(userID string) (*MonthlySummary, error) {
	start, end := monthWindow(time.Now())
	window := func() *gorm.DB {
		return s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)
	}

	summary := &MonthlySummary{
		ExpenseByCategory: map[string]float64{},
		IncomeByType:      map[string]float64{},
	}

	type groupTotal struct {
		Key   string
		Total float64
	}

	var expenseGroups []groupTotal
	if err := window().
		Select("category AS key, SUM(amount) AS total").
		Where("type = ?", models.TransactionTypeExpense).
		Group("category").
		Scan(&expenseGroups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, g := range expenseGroups {
		summary.ExpenseByCategory[g.Key] = g.Total
		summary.TotalExpenses += g.Total
	}

	var incomeGroups []groupTotal
	if err := window().
		Select("income_type AS key, SUM(amount) AS total").
		Where("type = ?", models.TransactionTypeIncome).
		Group("income_type").
		Scan(&incomeGroups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, g := range incomeGroups {
		summary.IncomeByType[g.Key] = g.Total
		summary.TotalIncome += g.Total
	}

	if err := window().Count(&summary.TransactionCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary.Balance = summary.TotalIncome - summary.TotalExpenses
	return summary, nil
}

func (s *transactionService) ensureUserExists(userID string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ensureLinkable verifies a linked transaction exists and is owned by
// the same user before the reference is stored.
func (s *transactionService) ensureLinkable(userID, linkedID string) error {
	var count int64
	if err := s.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", linkedID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "linkedTransactionId: must reference an existing transaction of the same user")
	}
	return nil
}
