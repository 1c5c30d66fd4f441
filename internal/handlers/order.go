package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/service/cart"
	"github.com/pawsomemeals/storefront/internal/service/order"
	"github.com/pawsomemeals/storefront/internal/service/token"
)

type OrderHandler struct {
	Orders *order.Service
	Cart   *cart.Service
}

// CreateOrder builds an order from the request lines, or from the
// user's cart when no lines are given.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req struct {
		Items           []order.Line          `json:"items"`
		ShippingAddress order.ShippingAddress `json:"shipping_address"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	userID := token.UserID(c)

	lines := req.Items
	if len(lines) == 0 {
		view, err := h.Cart.View(ctx, userID)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "cannot load cart")
		}
		for _, item := range view.Items {
			lines = append(lines, order.Line{
				ProductID:     item.ProductID,
				Quantity:      int(item.Quantity),
				Customization: item.Customization,
			})
		}
	}

	detail, err := h.Orders.Create(ctx, userID, lines, req.ShippingAddress)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.Orders.List(c.Request().Context(), token.UserID(c))
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot load orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.Orders.Get(c.Request().Context(), token.UserID(c), id, token.Role(c) == "admin")
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		return errorResponse(c, http.StatusBadRequest, "order has no items")
	case errors.Is(err, order.ErrValidation), errors.Is(err, pricing.ErrInvalidCustomization):
		return errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrInvalidStatus):
		return errorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrProductNotFound), errors.Is(err, order.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		return errorResponse(c, http.StatusForbidden, "forbidden")
	default:
		return errorResponse(c, http.StatusInternalServerError, "order operation failed")
	}
}
