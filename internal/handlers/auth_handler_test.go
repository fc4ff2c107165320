package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/middleware"
	"saldo/internal/models"
	"saldo/internal/services"
	"saldo/internal/validator"
)

// --- mock user service ---

type mockUserService struct {
	signInFn                   func(profile services.ExternalProfile) (*models.User, error)
	getUserByIDFn              func(id string) (*models.User, error)
	storeRefreshTokenHashFn    func(userID, tokenDigest string) error
	verifyRefreshTokenDigestFn func(userID, tokenDigest string) error
}

func (m *mockUserService) SignIn(profile services.ExternalProfile) (*models.User, error) {
	if m.signInFn != nil {
		return m.signInFn(profile)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenDigest string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenDigest)
	}
	return nil
}

func (m *mockUserService) VerifyRefreshTokenDigest(userID, tokenDigest string) error {
	if m.verifyRefreshTokenDigestFn != nil {
		return m.verifyRefreshTokenDigestFn(userID, tokenDigest)
	}
	return nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- test helpers ---

const testUserID = "0198c5b6-aaaa-7bbb-8ccc-000000000001"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/signin", handler.SignIn)
	r.POST("/auth/refresh", handler.RefreshToken)
	r.GET("/profile", injectUserID(testUserID), handler.Profile)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_SignIn(t *testing.T) {
	t.Run("returns 200 with tokens on success", func(t *testing.T) {
		userSvc := &mockUserService{
			signInFn: func(profile services.ExternalProfile) (*models.User, error) {
				return &models.User{
					Base:  models.Base{ID: testUserID},
					Email: profile.Email,
				}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signin",
			`{"provider":"google","email":"jan@example.com","name":"Jan Kowalski"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["success"] != true {
			t.Error("expected success true")
		}
		if result["accessToken"] == nil || result["accessToken"] == "" {
			t.Error("expected non-empty accessToken")
		}
		if result["refreshToken"] == nil || result["refreshToken"] == "" {
			t.Error("expected non-empty refreshToken")
		}
		user := result["user"].(map[string]interface{})
		if user["email"] != "jan@example.com" {
			t.Errorf("expected email jan@example.com, got %v", user["email"])
		}
	})

	t.Run("stores rotated refresh token hash", func(t *testing.T) {
		stored := ""
		userSvc := &mockUserService{
			signInFn: func(_ services.ExternalProfile) (*models.User, error) {
				return &models.User{Base: models.Base{ID: testUserID}}, nil
			},
			storeRefreshTokenHashFn: func(_, tokenDigest string) error {
				stored = tokenDigest
				return nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signin",
			`{"provider":"google","email":"jan@example.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		want := middleware.DigestToken(result["refreshToken"].(string))
		if stored != want {
			t.Error("expected digest of issued refresh token to be stored")
		}
	})

	t.Run("returns 400 on missing provider", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signin", `{"email":"jan@example.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
	})

	t.Run("returns 400 on invalid email format", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/signin", `{"provider":"google","email":"not-an-email"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	issueRefreshToken := func(t *testing.T) string {
		t.Helper()
		token, err := middleware.GenerateRefreshToken(&models.User{Base: models.Base{ID: testUserID}})
		if err != nil {
			t.Fatalf("failed to generate refresh token: %v", err)
		}
		return token
	}

	t.Run("returns new token pair on success", func(t *testing.T) {
		token := issueRefreshToken(t)
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh", `{"refreshToken":"`+token+`"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["accessToken"] == nil || result["refreshToken"] == nil {
			t.Error("expected fresh token pair")
		}
	})

	t.Run("returns 401 on garbage token", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh", `{"refreshToken":"not-a-jwt"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_REFRESH_TOKEN")
	})

	t.Run("returns 401 when digest does not match stored hash", func(t *testing.T) {
		token := issueRefreshToken(t)
		userSvc := &mockUserService{
			verifyRefreshTokenDigestFn: func(_, _ string) error {
				return apperrors.ErrInvalidRefreshToken
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh", `{"refreshToken":"`+token+`"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on missing token", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/refresh", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Email: "jan@example.com"}, nil
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		user := result["user"].(map[string]interface{})
		if user["id"] != testUserID {
			t.Errorf("expected id %s, got %v", testUserID, user["id"])
		}
	})

	t.Run("returns 404 when user is gone", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(_ string) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		handler := NewAuthHandler(userSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}
