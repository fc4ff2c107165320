package services

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
)

// exportService renders a user's transactions as an XLSX workbook.
type exportService struct {
	db *gorm.DB
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB) ExportServicer {
	return &exportService{db: db}
}

var exportHeaders = []string{"Type", "Category", "Amount", "Currency", "Date", "Description", "Source", "Notes"}

// ExportXLSX builds a one-sheet workbook with a header row followed by
// one row per transaction, newest first.
func (s *exportService) ExportXLSX(userID string, filter TransactionFilter) (*excelize.File, error) {
	base := s.db.Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var transactions []models.Transaction
	if err := base.Order("date DESC").Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	f := excelize.NewFile()
	const sheet = "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i, h := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	for idx, tx := range transactions {
		row := idx + 2
		classification := tx.Category
		if tx.Type == models.TransactionTypeIncome {
			classification = tx.IncomeType
		}
		values := []interface{}{
			string(tx.Type),
			classification,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Currency,
			tx.Date.Format("2006-01-02"),
			tx.Description,
			tx.Source,
			tx.Notes,
		}
		for i, v := range values {
			cell := fmt.Sprintf("%c%d", 'A'+i, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 12)
	_ = f.SetColWidth(sheet, "C", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 30)
	_ = f.SetColWidth(sheet, "G", "H", 20)

	return f, nil
}
