package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkuznec/pizza_orders/internal/hash"
	"github.com/mkuznec/pizza_orders/internal/logging"
	authmw "github.com/mkuznec/pizza_orders/internal/middleware/auth"
	"github.com/mkuznec/pizza_orders/internal/models"
	"github.com/mkuznec/pizza_orders/internal/mykafka"
	"github.com/mkuznec/pizza_orders/internal/service"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *service.TokenService
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		l.Warn("signup_failed", "status", 400, "reason", "missing_fields")
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		IsActive:     true,
	}

	var existing models.User
	err = h.DB.WithContext(ctx).
		Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		l.Warn("signup_failed", "status", 409, "reason", "user_exists")
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("signup_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("signup_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("signup_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	accessToken, err := h.Tokens.SignAccessToken(user.Username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}
	refreshToken, err := h.Tokens.SignRefreshToken(user.Username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh mints a new access token from a refresh-class token taken from
// either the Authorization header or the body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	raw := authmw.BearerToken(c)
	if raw == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "missing_token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	claims, err := h.Tokens.ParseRefreshToken(raw)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid_token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	accessToken, err := h.Tokens.SignAccessToken(claims.Subject)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	l.Info("refresh_success", "username", claims.Subject)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
	})
}
