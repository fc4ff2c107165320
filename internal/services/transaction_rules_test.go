package services

import (
	"strings"
	"testing"
	"time"

	"saldo/internal/models"
	"saldo/internal/testutil"
)

func validIncomeInput() TransactionInput {
	return TransactionInput{
		Type:        models.TransactionTypeIncome,
		Amount:      5000,
		Currency:    "PLN",
		Date:        time.Now(),
		Description: "Monthly salary",
		IncomeType:  "salary",
	}
}

func validExpenseInput() TransactionInput {
	return TransactionInput{
		Type:        models.TransactionTypeExpense,
		Amount:      120.50,
		Currency:    "PLN",
		Date:        time.Now(),
		Description: "Weekly groceries",
		Category:    "Groceries",
	}
}

func TestNormalizeCreate(t *testing.T) {
	t.Run("valid_income", func(t *testing.T) {
		out, err := normalizeCreate(validIncomeInput())
		testutil.AssertNoError(t, err)
		if out.IncomeType != "salary" {
			t.Errorf("expected income type salary, got %q", out.IncomeType)
		}
		if out.Category != "" {
			t.Errorf("expected empty category on income, got %q", out.Category)
		}
	})

	t.Run("valid_expense", func(t *testing.T) {
		out, err := normalizeCreate(validExpenseInput())
		testutil.AssertNoError(t, err)
		if out.Category != "Groceries" {
			t.Errorf("expected category Groceries, got %q", out.Category)
		}
		if out.IncomeType != "" {
			t.Errorf("expected empty income type on expense, got %q", out.IncomeType)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		in := validIncomeInput()
		in.Type = "transfer"
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("zero_amount", func(t *testing.T) {
		in := validIncomeInput()
		in.Amount = 0
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("negative_amount", func(t *testing.T) {
		in := validExpenseInput()
		in.Amount = -50
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown_currency", func(t *testing.T) {
		in := validIncomeInput()
		in.Currency = "CHF"
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("zero_date", func(t *testing.T) {
		in := validIncomeInput()
		in.Date = time.Time{}
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("blank_description", func(t *testing.T) {
		in := validIncomeInput()
		in.Description = "   "
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("description_too_long", func(t *testing.T) {
		in := validIncomeInput()
		in.Description = strings.Repeat("x", 256)
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("description_length_counts_characters_not_bytes", func(t *testing.T) {
		in := validIncomeInput()
		// 255 characters but far more bytes.
		in.Description = strings.Repeat("ż", 255)
		_, err := normalizeCreate(in)
		testutil.AssertNoError(t, err)

		in.Description = strings.Repeat("ż", 256)
		_, err = normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("income_classification_via_category", func(t *testing.T) {
		in := validIncomeInput()
		in.IncomeType = ""
		in.Category = "Salary"
		out, err := normalizeCreate(in)
		testutil.AssertNoError(t, err)
		if out.IncomeType != "salary" {
			t.Errorf("expected classification collapsed to salary, got %q", out.IncomeType)
		}
		if out.Category != "" {
			t.Errorf("expected category cleared, got %q", out.Category)
		}
	})

	t.Run("income_type_case_insensitive", func(t *testing.T) {
		in := validIncomeInput()
		in.IncomeType = "REFUND"
		out, err := normalizeCreate(in)
		testutil.AssertNoError(t, err)
		if out.IncomeType != "refund" {
			t.Errorf("expected refund, got %q", out.IncomeType)
		}
	})

	t.Run("income_without_classification", func(t *testing.T) {
		in := validIncomeInput()
		in.IncomeType = ""
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("return_percentage_on_non_refund", func(t *testing.T) {
		in := validIncomeInput()
		pct := 50.0
		in.ReturnPercentage = &pct
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("return_percentage_out_of_range", func(t *testing.T) {
		in := validIncomeInput()
		in.IncomeType = "refund"
		pct := 150.0
		in.ReturnPercentage = &pct
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("return_percentage_on_refund", func(t *testing.T) {
		in := validIncomeInput()
		in.IncomeType = "refund"
		pct := 80.0
		in.ReturnPercentage = &pct
		out, err := normalizeCreate(in)
		testutil.AssertNoError(t, err)
		if out.ReturnPercentage == nil || *out.ReturnPercentage != 80 {
			t.Errorf("expected return percentage 80, got %v", out.ReturnPercentage)
		}
	})

	t.Run("expense_with_unknown_category", func(t *testing.T) {
		in := validExpenseInput()
		in.Category = "Gadgets"
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("expense_with_income_type", func(t *testing.T) {
		in := validExpenseInput()
		in.IncomeType = "salary"
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("expense_with_return_percentage", func(t *testing.T) {
		in := validExpenseInput()
		pct := 10.0
		in.ReturnPercentage = &pct
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("notes_too_long", func(t *testing.T) {
		in := validExpenseInput()
		in.Notes = strings.Repeat("n", 501)
		_, err := normalizeCreate(in)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestNormalizeUpdate(t *testing.T) {
	t.Run("empty_update", func(t *testing.T) {
		_, err := normalizeUpdate(models.TransactionTypeExpense, TransactionUpdate{})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("amount_and_description", func(t *testing.T) {
		amount := 99.99
		desc := "  Updated description  "
		updates, err := normalizeUpdate(models.TransactionTypeExpense, TransactionUpdate{
			Amount:      &amount,
			Description: &desc,
		})
		testutil.AssertNoError(t, err)
		if updates["amount"] != 99.99 {
			t.Errorf("expected amount 99.99, got %v", updates["amount"])
		}
		if updates["description"] != "Updated description" {
			t.Errorf("expected trimmed description, got %v", updates["description"])
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		amount := -1.0
		_, err := normalizeUpdate(models.TransactionTypeExpense, TransactionUpdate{Amount: &amount})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("income_classification_via_category", func(t *testing.T) {
		cat := "Gift"
		updates, err := normalizeUpdate(models.TransactionTypeIncome, TransactionUpdate{Category: &cat})
		testutil.AssertNoError(t, err)
		if updates["income_type"] != "gift" {
			t.Errorf("expected income_type gift, got %v", updates["income_type"])
		}
		if _, ok := updates["category"]; ok {
			t.Error("expected no category column for income update")
		}
	})

	t.Run("income_type_rejected_on_expense", func(t *testing.T) {
		it := "salary"
		_, err := normalizeUpdate(models.TransactionTypeExpense, TransactionUpdate{IncomeType: &it})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("category_validated_on_expense", func(t *testing.T) {
		cat := "NotACategory"
		_, err := normalizeUpdate(models.TransactionTypeExpense, TransactionUpdate{Category: &cat})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("return_percentage_bounds", func(t *testing.T) {
		pct := 101.0
		_, err := normalizeUpdate(models.TransactionTypeIncome, TransactionUpdate{ReturnPercentage: &pct})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)
	start, end := monthWindow(now)

	if !start.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected window start: %v", start)
	}
	if !end.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected window end: %v", end)
	}

	// December rolls over into January of the next year.
	start, end = monthWindow(time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC))
	if start.Month() != time.December || end.Year() != 2027 || end.Month() != time.January {
		t.Errorf("unexpected year rollover window: %v .. %v", start, end)
	}
}
