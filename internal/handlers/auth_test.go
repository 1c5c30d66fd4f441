package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/service/token"
	"github.com/pawsomemeals/storefront/internal/storage"
)

func newAuthHandler() (*AuthHandler, storage.Store) {
	store := storage.NewMemStore()
	tokens := token.NewService(store, []byte("test-jwt-secret"), []byte("test-refresh-secret"))
	return &AuthHandler{Store: store, Tokens: tokens}, store
}

func jsonRequest(t *testing.T, method, target string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	e := echo.New()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterCreatesUserAndCart(t *testing.T) {
	h, store := newAuthHandler()

	c, rec := jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"email":      "Dana@Example.com",
		"password":   "sup3rsecret",
		"first_name": "Dana",
		"last_name":  "Reyes",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "dana@example.com", user.Email)
	require.Equal(t, "user", user.Role)
	require.NotZero(t, user.ID)

	cart, err := store.CartByUser(c.Request().Context(), user.ID)
	require.NoError(t, err)
	require.NotZero(t, cart.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newAuthHandler()
	payload := map[string]string{"email": "dana@example.com", "password": "sup3rsecret"}

	c, rec := jsonRequest(t, http.MethodPost, "/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = jsonRequest(t, http.MethodPost, "/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	h, _ := newAuthHandler()

	c, rec := jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "not-an-email", "password": "sup3rsecret",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "dana@example.com", "password": "short",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSetsCookies(t *testing.T) {
	h, _ := newAuthHandler()

	c, rec := jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "dana@example.com", "password": "sup3rsecret",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"email": "dana@example.com", "password": "sup3rsecret",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	names := map[string]bool{}
	for _, cookie := range rec.Result().Cookies() {
		names[cookie.Name] = true
	}
	require.True(t, names[token.AccessCookie])
	require.True(t, names[token.RefreshCookie])

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.Equal(t, false, resp["is_admin"])
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newAuthHandler()

	c, rec := jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "dana@example.com", "password": "sup3rsecret",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"email": "dana@example.com", "password": "wrongpassword",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
