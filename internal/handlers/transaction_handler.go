package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
	"saldo/internal/pagination"
	"saldo/internal/services"
	"saldo/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	exportService      services.ExportServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, exportService services.ExportServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, exportService: exportService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Income classification may be sent as either category or incomeType.
type CreateTransactionRequest struct {
	Type                models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount              float64                `json:"amount" binding:"required,gt=0"`
	Currency            string                 `json:"currency" binding:"required,app_currency"`
	Date                string                 `json:"date" binding:"required"`
	Description         string                 `json:"description" binding:"required,max=255"`
	Category            string                 `json:"category" binding:"omitempty,max=100"`
	IncomeType          string                 `json:"incomeType" binding:"omitempty,income_type"`
	Source              string                 `json:"source" binding:"omitempty,max=255"`
	ReturnPercentage    *float64               `json:"returnPercentage" binding:"omitempty,gte=0,lte=100"`
	LinkedTransactionID *string                `json:"linkedTransactionId"`
	Notes               string                 `json:"notes" binding:"omitempty,max=500"`
}

// Create handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a new income or expense transaction for the user
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       userId  path string                   true "User ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} map[string]interface{} "Created transaction with id"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transaction [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "date: must be RFC3339 or YYYY-MM-DD"))
		return
	}

	if req.LinkedTransactionID != nil && !uuid.IsValid(*req.LinkedTransactionID) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "linkedTransactionId: invalid format"))
		return
	}

	transaction, err := h.transactionService.Create(userID, services.TransactionInput{
		Type:                req.Type,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Date:                date,
		Description:         req.Description,
		Category:            req.Category,
		IncomeType:          req.IncomeType,
		Source:              req.Source,
		ReturnPercentage:    req.ReturnPercentage,
		LinkedTransactionID: req.LinkedTransactionID,
		Notes:               req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"transaction": transaction,
		"id":          transaction.ID,
	})
}

// ListCurrentMonth handles the default listing: the current calendar month
// @Summary     List current-month transactions
// @Description List the user's transactions dated within the current calendar month, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     200 {object} map[string]interface{} "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transaction [get]
func (h *TransactionHandler) ListCurrentMonth(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.ListCurrentMonth(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": transactions})
}

// Get handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get one of the user's transactions by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       userId        path string true "User ID"
// @Param       transactionId path string true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transaction/{transactionId} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parseTransactionID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.Get(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Only the allow-listed fields below are recognized; any
// other key in the payload is dropped silently.
type UpdateTransactionRequest struct {
	Amount              *float64 `json:"amount" binding:"omitempty,gt=0"`
	Currency            *string  `json:"currency" binding:"omitempty,app_currency"`
	Date                *string  `json:"date"`
	Description         *string  `json:"description" binding:"omitempty,max=255"`
	Category            *string  `json:"category" binding:"omitempty,max=100"`
	IncomeType          *string  `json:"incomeType" binding:"omitempty,income_type"`
	Source              *string  `json:"source" binding:"omitempty,max=255"`
	ReturnPercentage    *float64 `json:"returnPercentage" binding:"omitempty,gte=0,lte=100"`
	LinkedTransactionID *string  `json:"linkedTransactionId"`
	Notes               *string  `json:"notes" binding:"omitempty,max=500"`
}

// Update handles updating an existing transaction
// @Summary     Update transaction
// @Description Apply a partial update to an existing transaction. Unrecognized fields are ignored; the type cannot change.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       userId        path string                   true "User ID"
// @Param       transactionId path string                   true "Transaction ID"
// @Param       request       body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transaction/{transactionId} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parseTransactionID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	update := services.TransactionUpdate{
		Amount:              req.Amount,
		Currency:            req.Currency,
		Description:         req.Description,
		Category:            req.Category,
		IncomeType:          req.IncomeType,
		Source:              req.Source,
		ReturnPercentage:    req.ReturnPercentage,
		LinkedTransactionID: req.LinkedTransactionID,
		Notes:               req.Notes,
	}

	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "date: must be RFC3339 or YYYY-MM-DD"))
			return
		}
		update.Date = &parsed
	}

	if req.LinkedTransactionID != nil && !uuid.IsValid(*req.LinkedTransactionID) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "linkedTransactionId: invalid format"))
		return
	}

	transaction, err := h.transactionService.Update(userID, transactionID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": transaction})
}

// Delete handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and unlink it from the user
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       userId        path string true "User ID"
// @Param       transactionId path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transaction/{transactionId} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parseTransactionID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.Delete(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction deleted successfully"})
}

// List handles the paginated, filtered listing of all the user's transactions
// @Summary     List transactions
// @Description Get a paginated list of the user's transactions with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       userId    path  string true  "User ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       from_date query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       type      query string false "Filter by transaction type (income, expense)"
// @Param       category  query string false "Filter by category or income type"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.List(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrValidation, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrValidation, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrValidation, "invalid type, must be income or expense")
		}
	}

	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	return filter, nil
}

// Dashboard handles the monthly summary for the dashboard
// @Summary     Monthly dashboard summary
// @Description Current-month totals: income, expenses, balance, and per-category breakdowns
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     200 {object} map[string]interface{} "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/dashboard [get]
func (h *TransactionHandler) Dashboard(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transactionService.Summary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// Export streams the user's transactions as an XLSX workbook
// @Summary     Export transactions
// @Description Download the user's transactions as an XLSX spreadsheet
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       userId    path  string true  "User ID"
// @Param       from_date query string false "Filter by start date"
// @Param       to_date   query string false "Filter by end date"
// @Param       type      query string false "Filter by transaction type"
// @Success     200 {file} file "Workbook"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/transactions/export [get]
func (h *TransactionHandler) Export(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	workbook, err := h.exportService.ExportXLSX(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := workbook.Write(c.Writer); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
	}
}
