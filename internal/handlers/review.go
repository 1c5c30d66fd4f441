package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/service/token"
	"github.com/pawsomemeals/storefront/internal/storage"
)

type ReviewHandler struct {
	Store storage.Store
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.Store.ProductReviews(c.Request().Context(), productID)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot load reviews")
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return errorResponse(c, http.StatusBadRequest, "rating must be between 1 and 5")
	}

	ctx := c.Request().Context()
	product, err := h.Store.Product(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot load product")
	}

	review := models.Review{
		UserID:    token.UserID(c),
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.Store.CreateReview(ctx, &review); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot save review")
	}

	// Recompute the denormalized aggregate from all reviews, rounded to
	// one decimal for display.
	reviews, err := h.Store.ProductReviews(ctx, productID)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot load reviews")
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	product.ReviewCount = len(reviews)
	product.Rating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	if err := h.Store.SaveProduct(ctx, product); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot update product rating")
	}

	return c.JSON(http.StatusCreated, review)
}
