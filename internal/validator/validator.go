// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"saldo/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("app_currency", validateCurrency)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("income_type", validateIncomeType)
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("date_format", validateDateFormat)
		_ = v.RegisterValidation("theme", validateTheme)
		_ = v.RegisterValidation("language", validateLanguage)
		_ = v.RegisterValidation("data_retention", validateRetention)
	}
}

func validateCurrency(fl validator.FieldLevel) bool {
	return models.IsValidCurrency(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

// income_type is case-insensitive at the edge; normalization to
// lowercase happens before storage.
func validateIncomeType(fl validator.FieldLevel) bool {
	return models.IsValidIncomeType(strings.ToLower(fl.Field().String()))
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return models.IsValidExpenseCategory(fl.Field().String())
}

func validateDateFormat(fl validator.FieldLevel) bool {
	return models.IsValidDateFormat(fl.Field().String())
}

func validateTheme(fl validator.FieldLevel) bool {
	return models.IsValidTheme(fl.Field().String())
}

func validateLanguage(fl validator.FieldLevel) bool {
	return models.IsValidLanguage(fl.Field().String())
}

func validateRetention(fl validator.FieldLevel) bool {
	return models.IsValidRetention(fl.Field().String())
}
