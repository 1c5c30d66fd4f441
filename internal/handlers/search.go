package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/service/search"
	"github.com/pawsomemeals/storefront/internal/util"
)

type SearchHandler struct {
	Searches *search.Service
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return errorResponse(c, http.StatusBadRequest, "query parameter q required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, products, err := h.Searches.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
