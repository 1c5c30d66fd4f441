package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pawsomemeals/storefront/internal/events"
	"github.com/pawsomemeals/storefront/internal/logging"
	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/storage"
)

var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrProductNotFound = errors.New("product not found")
	ErrNotFound        = errors.New("order not found")
	ErrForbidden       = errors.New("order belongs to another user")
	ErrValidation      = errors.New("invalid order")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrPersistence     = errors.New("order could not be saved")
)

type Service struct {
	Store    storage.Store
	Engine   *pricing.Engine
	Producer *events.Producer
}

func NewService(store storage.Store, engine *pricing.Engine, producer *events.Producer) *Service {
	return &Service{Store: store, Engine: engine, Producer: producer}
}

type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (a ShippingAddress) validate() error {
	for field, value := range map[string]string{
		"address": a.Address,
		"city":    a.City,
		"state":   a.State,
		"zip":     a.Zip,
		"country": a.Country,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: missing shipping %s", ErrValidation, field)
		}
	}
	return nil
}

// Line is one requested order line, priced at creation time.
type Line struct {
	ProductID     uint                  `json:"product_id"`
	Quantity      int                   `json:"quantity"`
	Customization *models.Customization `json:"customization,omitempty"`
}

// Detail is an order with its items.
type Detail struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

// Create assembles an order from the given lines: every line is priced
// at the product's current base price, the per-unit price is frozen on
// the order item, and the source cart is cleared in the same
// transaction as the insert. Any failed line aborts the whole order.
func (s *Service) Create(ctx context.Context, userID uint, lines []Line, addr ShippingAddress) (*Detail, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := addr.validate(); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d quantity must be at least 1", ErrValidation, i)
		}
		product, err := s.Store.Product(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
			}
			return nil, fmt.Errorf("load product %d: %w", line.ProductID, err)
		}
		if err := s.Engine.Validate(line.Customization); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if err := s.Engine.VerifyCustomPrice(product.Price, line.Customization); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}

		unit, err := s.Engine.LinePrice(product.Price, line.Customization)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		// The subtotal accumulates exact values; rounding happens once
		// at persistence. The per-item price is the rounded display copy.
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))

		items = append(items, models.OrderItem{
			ProductID:     line.ProductID,
			Quantity:      uint(line.Quantity),
			Price:         pricing.Currency(unit),
			Customization: line.Customization.Clone(),
		})
	}

	shipping := s.Engine.Shipping(subtotal)
	order := &models.Order{
		UserID:          userID,
		Subtotal:        pricing.Currency(subtotal),
		Shipping:        pricing.Currency(shipping),
		Total:           pricing.Currency(subtotal.Add(shipping)),
		Status:          models.OrderStatusPending,
		ShippingAddress: addr.Address,
		ShippingCity:    addr.City,
		ShippingState:   addr.State,
		ShippingZip:     addr.Zip,
		ShippingCountry: addr.Country,
	}

	var cartID uint
	if cart, err := s.Store.CartByUser(ctx, userID); err == nil {
		cartID = cart.ID
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if err := s.Store.CreateOrder(ctx, order, items, cartID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.publish(ctx, "order.created", order.ID, map[string]any{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total,
		"items":    len(items),
	})
	return &Detail{Order: *order, Items: items}, nil
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Store.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

// Get returns one order with items, enforcing ownership. Admins pass
// admin=true and can read any order.
func (s *Service) Get(ctx context.Context, userID, orderID uint, admin bool) (*Detail, error) {
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if !admin && order.UserID != userID {
		return nil, ErrForbidden
	}
	items, err := s.Store.OrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return &Detail{Order: *order, Items: items}, nil
}

// UpdateStatus moves an order along the pending, processing, shipped,
// completed lifecycle. Cancelling is allowed from pending or processing.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	order, err := s.Store.Order(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if !models.ValidStatusTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, order.Status, status)
	}
	if err := s.Store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status

	s.publish(ctx, "order.status_changed", order.ID, map[string]any{
		"order_id": order.ID,
		"status":   status,
	})
	return order, nil
}

func (s *Service) publish(ctx context.Context, event string, orderID uint, payload map[string]any) {
	payload["event"] = event
	if err := s.Producer.Publish(ctx, events.TopicOrders, fmt.Sprint(orderID), payload); err != nil {
		logging.FromContext(ctx).Warn("publish order event failed", "event", event, "error", err)
	}
}
