package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawsomemeals/storefront/internal/events"
	"github.com/pawsomemeals/storefront/internal/logging"
	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/service/search"
	"github.com/pawsomemeals/storefront/internal/storage"
	"github.com/pawsomemeals/storefront/internal/util"
)

type ProductHandler struct {
	Store    storage.Store
	Search   *search.Service
	Producer *events.Producer
}

type productRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Protein      string  `json:"protein"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	IsBestseller bool    `json:"is_bestseller"`
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, total, err := h.Store.Products(c.Request().Context(), offset, limit)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot load products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": products,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.Store.Product(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot load product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Price <= 0 {
		return errorResponse(c, http.StatusBadRequest, "name and positive price required")
	}

	product := models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Protein:      req.Protein,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		IsBestseller: req.IsBestseller,
	}
	ctx := c.Request().Context()
	if err := h.Store.CreateProduct(ctx, &product); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot create product")
	}
	h.index(ctx, &product)

	h.publish(c, product.ID, map[string]any{
		"event":      "product.created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	product, err := h.Store.Product(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot load product")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Protein != "" {
		product.Protein = req.Protein
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	product.IsBestseller = req.IsBestseller

	if err := h.Store.SaveProduct(ctx, product); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "cannot save product")
	}
	h.index(ctx, product)

	h.publish(c, product.ID, map[string]any{
		"event":      "product.updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errorResponse(c, http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, "cannot delete product")
	}
	if err := h.Search.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("remove product from index failed", "product_id", id, "error", err)
	}

	h.publish(c, id, map[string]any{
		"event":      "product.deleted",
		"product_id": id,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) index(ctx context.Context, product *models.Product) {
	if err := h.Search.IndexProduct(ctx, product); err != nil {
		logging.FromContext(ctx).Warn("index product failed", "product_id", product.ID, "error", err)
	}
}

func (h *ProductHandler) publish(c echo.Context, productID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, events.TopicProducts, fmt.Sprint(productID), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("publish product event failed", "error", err)
	}
}
