package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
)

// TransactionInput is a raw create payload after JSON decoding. An
// income classification may arrive in either Category or IncomeType;
// normalizeCreate collapses it into the canonical representation
// (IncomeType for income, Category for expense, never both).
type TransactionInput struct {
	Type                models.TransactionType
	Amount              float64
	Currency            string
	Date                time.Time
	Description         string
	Category            string
	IncomeType          string
	Source              string
	ReturnPercentage    *float64
	LinkedTransactionID *string
	Notes               string
}

// TransactionUpdate holds the allow-listed mutable fields of a
// transaction. Nil means "leave untouched". Fields outside this set
// never reach the service; JSON decoding drops them silently.
type TransactionUpdate struct {
	Amount              *float64
	Currency            *string
	Date                *time.Time
	Description         *string
	Category            *string
	IncomeType          *string
	Source              *string
	ReturnPercentage    *float64
	LinkedTransactionID *string
	Notes               *string
}

func (u *TransactionUpdate) empty() bool {
	return u.Amount == nil && u.Currency == nil && u.Date == nil &&
		u.Description == nil && u.Category == nil && u.IncomeType == nil &&
		u.Source == nil && u.ReturnPercentage == nil &&
		u.LinkedTransactionID == nil && u.Notes == nil
}

func invalidField(field, reason string) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("%s: %s", field, reason))
}

// normalizeCreate validates a create payload and returns the normalized
// field set ready for persistence. Pure: no I/O, no side effects. The
// returned error names the first offending field.
func normalizeCreate(in TransactionInput) (TransactionInput, error) {
	switch in.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
	default:
		return in, invalidField("type", "must be income or expense")
	}
	if in.Amount <= 0 {
		return in, invalidField("amount", "must be a positive number")
	}
	if !models.IsValidCurrency(in.Currency) {
		return in, invalidField("currency", "must be one of PLN, USD, EUR, GBP")
	}
	if in.Date.IsZero() {
		return in, invalidField("date", "is required")
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return in, invalidField("description", "is required")
	}
	if utf8.RuneCountInString(in.Description) > 255 {
		return in, invalidField("description", "must be at most 255 characters")
	}

	switch in.Type {
	case models.TransactionTypeIncome:
		// The classification may be delivered through either field.
		classification := in.IncomeType
		if classification == "" {
			classification = in.Category
		}
		classification = strings.ToLower(strings.TrimSpace(classification))
		if !models.IsValidIncomeType(classification) {
			return in, invalidField("incomeType", "must be one of salary, investment, transfer, gift, other, refund")
		}
		in.IncomeType = classification
		in.Category = ""

		if in.ReturnPercentage != nil {
			if classification != models.IncomeTypeRefund {
				return in, invalidField("returnPercentage", "only valid for refund income")
			}
			if *in.ReturnPercentage < 0 || *in.ReturnPercentage > 100 {
				return in, invalidField("returnPercentage", "must be between 0 and 100")
			}
		}

	case models.TransactionTypeExpense:
		in.Category = strings.TrimSpace(in.Category)
		if !models.IsValidExpenseCategory(in.Category) {
			return in, invalidField("category", "must be a fixed expense category")
		}
		if in.IncomeType != "" {
			return in, invalidField("incomeType", "not valid for expense transactions")
		}
		if in.ReturnPercentage != nil {
			return in, invalidField("returnPercentage", "not valid for expense transactions")
		}
		in.IncomeType = ""
	}

	in.Source = strings.TrimSpace(in.Source)
	if utf8.RuneCountInString(in.Source) > 255 {
		return in, invalidField("source", "must be at most 255 characters")
	}
	if utf8.RuneCountInString(in.Notes) > 500 {
		return in, invalidField("notes", "must be at most 500 characters")
	}

	return in, nil
}

// normalizeUpdate validates an update against the stored transaction
// type and returns the column set to merge. Type itself is immutable.
// An update carrying no recognized field is a validation error.
func normalizeUpdate(txType models.TransactionType, u TransactionUpdate) (map[string]interface{}, error) {
	if u.empty() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "no valid fields to update")
	}

	updates := map[string]interface{}{}

	if u.Amount != nil {
		if *u.Amount <= 0 {
			return nil, invalidField("amount", "must be a positive number")
		}
		updates["amount"] = *u.Amount
	}
	if u.Currency != nil {
		if !models.IsValidCurrency(*u.Currency) {
			return nil, invalidField("currency", "must be one of PLN, USD, EUR, GBP")
		}
		updates["currency"] = *u.Currency
	}
	if u.Date != nil {
		if u.Date.IsZero() {
			return nil, invalidField("date", "is invalid")
		}
		updates["date"] = *u.Date
	}
	if u.Description != nil {
		desc := strings.TrimSpace(*u.Description)
		if desc == "" {
			return nil, invalidField("description", "is required")
		}
		if utf8.RuneCountInString(desc) > 255 {
			return nil, invalidField("description", "must be at most 255 characters")
		}
		updates["description"] = desc
	}

	switch txType {
	case models.TransactionTypeIncome:
		classification := ""
		if u.IncomeType != nil {
			classification = *u.IncomeType
		} else if u.Category != nil {
			classification = *u.Category
		}
		if classification != "" {
			classification = strings.ToLower(strings.TrimSpace(classification))
			if !models.IsValidIncomeType(classification) {
				return nil, invalidField("incomeType", "must be one of salary, investment, transfer, gift, other, refund")
			}
			updates["income_type"] = classification
		}
		if u.ReturnPercentage != nil {
			if *u.ReturnPercentage < 0 || *u.ReturnPercentage > 100 {
				return nil, invalidField("returnPercentage", "must be between 0 and 100")
			}
			updates["return_percentage"] = *u.ReturnPercentage
		}

	case models.TransactionTypeExpense:
		if u.IncomeType != nil {
			return nil, invalidField("incomeType", "not valid for expense transactions")
		}
		if u.ReturnPercentage != nil {
			return nil, invalidField("returnPercentage", "not valid for expense transactions")
		}
		if u.Category != nil {
			cat := strings.TrimSpace(*u.Category)
			if !models.IsValidExpenseCategory(cat) {
				return nil, invalidField("category", "must be a fixed expense category")
			}
			updates["category"] = cat
		}
	}

	if u.Source != nil {
		src := strings.TrimSpace(*u.Source)
		if utf8.RuneCountInString(src) > 255 {
			return nil, invalidField("source", "must be at most 255 characters")
		}
		updates["source"] = src
	}
	if u.LinkedTransactionID != nil {
		updates["linked_transaction_id"] = *u.LinkedTransactionID
	}
	if u.Notes != nil {
		if utf8.RuneCountInString(*u.Notes) > 500 {
			return nil, invalidField("notes", "must be at most 500 characters")
		}
		updates["notes"] = *u.Notes
	}

	if len(updates) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "no valid fields to update")
	}

	return updates, nil
}

// monthWindow returns the half-open interval covering now's calendar
// month: [first instant of the month, first instant of the next month).
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}
