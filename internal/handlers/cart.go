package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/service/cart"
	"github.com/pawsomemeals/storefront/internal/service/token"
)

type CartHandler struct {
	Cart *cart.Service
}

func (h *CartHandler) GetCart(c echo.Context) error {
	view, err := h.Cart.View(c.Request().Context(), token.UserID(c))
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot load cart")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var req struct {
		ProductID     uint                  `json:"product_id"`
		Quantity      int                   `json:"quantity"`
		Customization *models.Customization `json:"customization,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, created, err := h.Cart.AddItem(c.Request().Context(), token.UserID(c), req.ProductID, req.Quantity, req.Customization)
	if err != nil {
		return cartError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	item, err := h.Cart.UpdateQuantity(c.Request().Context(), token.UserID(c), id, req.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Cart.Remove(c.Request().Context(), token.UserID(c), id); err != nil {
		return cartError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.Cart.Clear(c.Request().Context(), token.UserID(c)); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot clear cart")
	}
	return c.NoContent(http.StatusNoContent)
}

func cartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		return errorResponse(c, http.StatusNotFound, "product not found")
	case errors.Is(err, cart.ErrItemNotFound):
		return errorResponse(c, http.StatusNotFound, "cart item not found")
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, pricing.ErrInvalidCustomization):
		return errorResponse(c, http.StatusBadRequest, err.Error())
	default:
		return errorResponse(c, http.StatusInternalServerError, "cart operation failed")
	}
}
