package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkuznec/pizza_orders/internal/models"
	"github.com/mkuznec/pizza_orders/internal/mykafka"
	"github.com/mkuznec/pizza_orders/internal/service"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTokenService() *service.TokenService {
	return &service.TokenService{
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
}

func newAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	db := InitTestDB(t)
	h := &AuthHandler{
		DB:       db,
		Tokens:   newTokenService(),
		Producer: &mykafka.Producer{},
	}
	return h, db
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func TestSignUp(t *testing.T) {
	h, db := newAuthHandler(t)
	e := echo.New()

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/auth/signup", payload)
	require.NoError(t, h.SignUp(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "test_user", resp["username"])
	require.Equal(t, "test@example.com", resp["email"])
	require.Equal(t, true, resp["is_active"])
	require.Equal(t, false, resp["is_staff"])
	require.NotContains(t, resp, "password_hash")

	var stored models.User
	require.NoError(t, db.Where("username = ?", "test_user").First(&stored).Error)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, "password", stored.PasswordHash)
}

func TestSignUpMissingFields(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	for _, payload := range []map[string]string{
		{"email": "a@example.com", "password": "password"},
		{"username": "a", "password": "password"},
		{"username": "a", "email": "a@example.com"},
	} {
		_, c := doJSONRequest(t, e, http.MethodPost, "/auth/signup", payload)
		err := h.SignUp(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError")
		require.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestSignUpDuplicate(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/auth/signup", payload)
	require.NoError(t, h.SignUp(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, cDup := doJSONRequest(t, e, http.MethodPost, "/auth/signup", payload)
	err := h.SignUp(cDup)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	// same email under a different username is still a conflict
	payload["username"] = "another_user"
	_, cEmail := doJSONRequest(t, e, http.MethodPost, "/auth/signup", payload)
	err = h.SignUp(cEmail)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func signUpAndLogin(t *testing.T, h *AuthHandler, e *echo.Echo) (string, string) {
	t.Helper()

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/auth/signup", payload)
	require.NoError(t, h.SignUp(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	recLogin, cLogin := doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	})
	require.NoError(t, h.Login(cLogin))
	require.Equal(t, http.StatusOK, recLogin.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(recLogin.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	return resp.AccessToken, resp.RefreshToken
}

func TestLogin(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	access, refresh := signUpAndLogin(t, h, e)

	claims, err := h.Tokens.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, "test_user", claims.Subject)

	refreshClaims, err := h.Tokens.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, "test_user", refreshClaims.Subject)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	signUpAndLogin(t, h, e)

	_, cWrong := doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong_password",
	})
	err := h.Login(cWrong)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)

	_, cUnknown := doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	})
	err = h.Login(cUnknown)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRefresh(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	_, refresh := signUpAndLogin(t, h, e)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": refresh,
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	claims, err := h.Tokens.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "test_user", claims.Subject)
}

func TestRefreshViaBearerHeader(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	_, refresh := signUpAndLogin(t, h, e)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	access, _ := signUpAndLogin(t, h, e)

	_, c := doJSONRequest(t, e, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": access,
	})
	err := h.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRefreshMissingToken(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodPost, "/auth/refresh", nil)
	err := h.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
