package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/events"
	"github.com/pawsomemeals/storefront/internal/hash"
	"github.com/pawsomemeals/storefront/internal/logging"
	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/service/token"
	"github.com/pawsomemeals/storefront/internal/storage"
)

type AuthHandler struct {
	Store    storage.Store
	Tokens   *token.Service
	Producer *events.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return errorResponse(c, http.StatusBadRequest, "valid email required")
	}
	if len(req.Password) < 8 {
		return errorResponse(c, http.StatusBadRequest, "password must be at least 8 characters")
	}

	ctx := c.Request().Context()
	if _, err := h.Store.UserByEmail(ctx, req.Email); err == nil {
		return errorResponse(c, http.StatusConflict, "user already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return errorResponse(c, http.StatusInternalServerError, "registration failed")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "registration failed")
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         "user",
	}
	if err := h.Store.CreateUser(ctx, &user); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "registration failed")
	}
	if err := h.Store.CreateCart(ctx, &models.Cart{UserID: user.ID}); err != nil {
		logging.FromContext(ctx).Warn("create cart at registration failed", "user_id", user.ID, "error", err)
	}

	h.publish(c, user.ID, map[string]any{
		"event":   "user.registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	user, err := h.Store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return errorResponse(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, refresh, err := h.Tokens.Issue(ctx, user.ID, user.Role)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "login failed")
	}
	token.SetPair(c, access, refresh)

	h.publish(c, user.ID, map[string]any{
		"event":   "user.logged_in",
		"user_id": user.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"is_admin":      user.Role == "admin",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(token.RefreshCookie); err == nil {
		if err := h.Tokens.Revoke(c.Request().Context(), cookie.Value); err != nil {
			return errorResponse(c, http.StatusInternalServerError, "logout failed")
		}
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie(token.AccessCookie, "", "/", expired))
	c.SetCookie(token.CreateCookie(token.RefreshCookie, "", "/", expired))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.Store.User(c.Request().Context(), token.UserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) publish(c echo.Context, userID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, events.TopicUsers, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("publish user event failed", "error", err)
	}
}
