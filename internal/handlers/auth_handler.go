package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/middleware"
	"saldo/internal/services"
)

// AuthHandler handles sign-in and token lifecycle requests.
type AuthHandler struct {
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// SignInRequest carries the profile asserted by the external identity
// provider. The provider's assertion is verified upstream; this
// endpoint records the sign-in and issues first-party tokens.
type SignInRequest struct {
	Provider   string `json:"provider" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"omitempty,max=255"`
	GivenName  string `json:"givenName" binding:"omitempty,max=100"`
	FamilyName string `json:"familyName" binding:"omitempty,max=100"`
	Image      string `json:"image" binding:"omitempty,max=512"`
	Locale     string `json:"locale" binding:"omitempty,max=10"`
}

// AuthResponse represents the response for successful authentication
type AuthResponse struct {
	Success      bool        `json:"success"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         interface{} `json:"user"`
}

// SignIn handles external-identity sign-in
// @Summary     Sign in
// @Description Create or update the account for an externally verified identity and issue tokens
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignInRequest true "External identity profile"
// @Success     200 {object} AuthResponse "Tokens and user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	user, err := h.userService.SignIn(services.ExternalProfile{
		Provider:   req.Provider,
		Email:      req.Email,
		Name:       req.Name,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		AvatarURL:  req.Image,
		Locale:     req.Locale,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.DigestToken(refreshToken)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// RefreshTokenRequest represents the request payload for refreshing tokens.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken handles token refresh with rotation
// @Summary     Refresh tokens
// @Description Exchange a valid refresh token for a new access/refresh pair; the old refresh token is invalidated
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshTokenRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New tokens"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or expired refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidRefreshToken)
		return
	}

	if err := h.userService.VerifyRefreshTokenDigest(claims.UserID, middleware.DigestToken(req.RefreshToken)); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	// Rotate: the stored hash now matches only the new token.
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.DigestToken(refreshToken)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// Profile returns the authenticated user's own record
// @Summary     Get profile
// @Description Get the profile of the authenticated user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "User"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
