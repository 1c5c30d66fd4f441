package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/service/cart"
	"github.com/pawsomemeals/storefront/internal/service/payment"
	"github.com/pawsomemeals/storefront/internal/service/token"
)

type PaymentHandler struct {
	Payments *payment.Service
}

// CreateIntent opens a payment intent for the authenticated user's
// cart, repriced server-side.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	intent, err := h.Payments.CreateIntentFromCart(c.Request().Context(), token.UserID(c))
	if err != nil {
		var provErr *payment.ProviderError
		switch {
		case errors.Is(err, cart.ErrCartNotFound), errors.Is(err, cart.ErrEmptyCart):
			return errorResponse(c, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, cart.ErrProductNotFound):
			return errorResponse(c, http.StatusConflict, err.Error())
		case errors.As(err, &provErr):
			return c.JSON(http.StatusBadGateway, echo.Map{
				"status":  "error",
				"code":    provErr.Code,
				"message": provErr.Message,
			})
		default:
			return errorResponse(c, http.StatusInternalServerError, "payment intent failed")
		}
	}
	return c.JSON(http.StatusCreated, intent)
}
