package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/models"
	"saldo/internal/services"
)

// SettingsHandler handles user settings requests.
type SettingsHandler struct {
	settingsService services.SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// NotificationsDTO groups the notification toggles.
type NotificationsDTO struct {
	Push         bool `json:"push"`
	Email        bool `json:"email"`
	BudgetAlerts bool `json:"budgetAlerts"`
}

// BudgetDTO carries budget-related settings.
type BudgetDTO struct {
	MonthlyLimit float64 `json:"monthlyLimit"`
}

// PrivacyDTO carries privacy-related settings.
type PrivacyDTO struct {
	DataRetention string `json:"dataRetention"`
}

// SettingsResponse is the nested wire shape for user settings.
type SettingsResponse struct {
	DefaultCurrency     string           `json:"defaultCurrency"`
	PreferredDateFormat string           `json:"preferredDateFormat"`
	CustomName          string           `json:"customName"`
	PreferredTheme      string           `json:"preferredTheme"`
	Language            string           `json:"language"`
	Notifications       NotificationsDTO `json:"notifications"`
	Budget              BudgetDTO        `json:"budget"`
	Privacy             PrivacyDTO       `json:"privacy"`
}

func toSettingsResponse(s models.Settings) SettingsResponse {
	return SettingsResponse{
		DefaultCurrency:     s.DefaultCurrency,
		PreferredDateFormat: s.DateFormat,
		CustomName:          s.CustomName,
		PreferredTheme:      s.Theme,
		Language:            s.Language,
		Notifications: NotificationsDTO{
			Push:         s.NotifyPush,
			Email:        s.NotifyEmail,
			BudgetAlerts: s.NotifyBudgetAlerts,
		},
		Budget:  BudgetDTO{MonthlyLimit: s.MonthlyLimit},
		Privacy: PrivacyDTO{DataRetention: s.DataRetention},
	}
}

// Get returns the user's settings with defaults filled in
// @Summary     Get user settings
// @Description Get the user's settings; unset fields come back as defaults
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Param       userId path string true "User ID"
// @Success     200 {object} map[string]interface{} "Settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settingsService.Get(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": toSettingsResponse(*settings)})
}

// UpdateNotificationsRequest is the nested notifications patch.
type UpdateNotificationsRequest struct {
	Push         *bool `json:"push"`
	Email        *bool `json:"email"`
	BudgetAlerts *bool `json:"budgetAlerts"`
}

// UpdateBudgetRequest is the nested budget patch.
type UpdateBudgetRequest struct {
	MonthlyLimit *float64 `json:"monthlyLimit" binding:"omitempty,gte=0"`
}

// UpdatePrivacyRequest is the nested privacy patch.
type UpdatePrivacyRequest struct {
	DataRetention *string `json:"dataRetention" binding:"omitempty,data_retention"`
}

// UpdateSettingsRequest represents a partial settings update. Absent
// fields keep their stored values.
type UpdateSettingsRequest struct {
	DefaultCurrency     *string                     `json:"defaultCurrency" binding:"omitempty,app_currency"`
	PreferredDateFormat *string                     `json:"preferredDateFormat" binding:"omitempty,date_format"`
	CustomName          *string                     `json:"customName" binding:"omitempty,max=100"`
	PreferredTheme      *string                     `json:"preferredTheme" binding:"omitempty,theme"`
	Language            *string                     `json:"language" binding:"omitempty,language"`
	Notifications       *UpdateNotificationsRequest `json:"notifications"`
	Budget              *UpdateBudgetRequest        `json:"budget"`
	Privacy             *UpdatePrivacyRequest       `json:"privacy"`
}

// Update merges the provided fields into the user's settings
// @Summary     Update user settings
// @Description Merge the provided fields into the user's settings; omitted fields are untouched
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       userId  path string                true "User ID"
// @Param       request body UpdateSettingsRequest true "Settings fields to update"
// @Success     200 {object} map[string]interface{} "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{userId}/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, err := authorizeOwner(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	update := services.SettingsUpdate{
		DefaultCurrency: req.DefaultCurrency,
		DateFormat:      req.PreferredDateFormat,
		CustomName:      req.CustomName,
		Theme:           req.PreferredTheme,
		Language:        req.Language,
	}
	if req.Notifications != nil {
		update.Notifications = &services.NotificationsUpdate{
			Push:         req.Notifications.Push,
			Email:        req.Notifications.Email,
			BudgetAlerts: req.Notifications.BudgetAlerts,
		}
	}
	if req.Budget != nil {
		update.Budget = &services.BudgetUpdate{MonthlyLimit: req.Budget.MonthlyLimit}
	}
	if req.Privacy != nil {
		update.Privacy = &services.PrivacyUpdate{DataRetention: req.Privacy.DataRetention}
	}

	settings, err := h.settingsService.Update(userID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": toSettingsResponse(*settings)})
}
