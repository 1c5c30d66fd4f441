package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pawsomemeals/storefront/internal/events"
	"github.com/pawsomemeals/storefront/internal/logging"
	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/storage"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type Service struct {
	Store    storage.Store
	Engine   *pricing.Engine
	Producer *events.Producer
}

func NewService(store storage.Store, engine *pricing.Engine, producer *events.Producer) *Service {
	return &Service{Store: store, Engine: engine, Producer: producer}
}

// ItemView is a cart line joined with its product and priced afresh.
type ItemView struct {
	models.CartItem
	ProductName string  `json:"product_name"`
	BasePrice   float64 `json:"base_price"`
	LinePrice   float64 `json:"line_price"`
}

type View struct {
	CartID    uint       `json:"cart_id"`
	Items     []ItemView `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  float64    `json:"subtotal"`
	Shipping  float64    `json:"shipping"`
	Total     float64    `json:"total"`
}

// Totals carries exact (unrounded) money for downstream consumers such
// as the payment coordinator.
type Totals struct {
	CartID   uint
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
}

func (t Totals) Total() decimal.Decimal {
	return t.Subtotal.Add(t.Shipping)
}

// GetOrCreate returns the user's cart, creating it on first access. A
// concurrent create losing the unique-index race falls back to reading
// the winner's row.
func (s *Service) GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Store.CartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	cart = &models.Cart{UserID: userID}
	if err := s.Store.CreateCart(ctx, cart); err != nil {
		if existing, lookupErr := s.Store.CartByUser(ctx, userID); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// View prices every line at the product's current base price. A line
// whose product has been deleted is still shown, priced at zero unless
// it carries a customPrice.
func (s *Service) View(ctx context.Context, userID uint) (*View, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.Store.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}

	view := &View{CartID: cart.ID, Items: make([]ItemView, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		iv := ItemView{CartItem: item}
		base := 0.0
		if product, err := s.Store.Product(ctx, item.ProductID); err == nil {
			iv.ProductName = product.Name
			base = product.Price
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		iv.BasePrice = base

		line, err := s.Engine.LinePrice(base, item.Customization)
		if err != nil {
			return nil, fmt.Errorf("price cart item %d: %w", item.ID, err)
		}
		line = line.Mul(decimal.NewFromInt(int64(item.Quantity)))
		iv.LinePrice = pricing.Currency(line)
		subtotal = subtotal.Add(line)
		view.ItemCount += int(item.Quantity)
		view.Items = append(view.Items, iv)
	}

	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = s.Engine.Shipping(subtotal)
	}
	view.Subtotal = pricing.Currency(subtotal)
	view.Shipping = pricing.Currency(shipping)
	view.Total = pricing.Currency(subtotal.Add(shipping))
	return view, nil
}

// CurrentTotals reprices the cart and returns exact amounts. It refuses
// empty or missing carts so a payment intent can never be created for a
// zero amount.
func (s *Service) CurrentTotals(ctx context.Context, userID uint) (*Totals, error) {
	cart, err := s.Store.CartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items, err := s.Store.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, item := range items {
		product, err := s.Store.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
			}
			return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}
		line, err := s.Engine.LinePrice(product.Price, item.Customization)
		if err != nil {
			return nil, fmt.Errorf("price cart item %d: %w", item.ID, err)
		}
		subtotal = subtotal.Add(line.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return &Totals{
		CartID:   cart.ID,
		Subtotal: subtotal,
		Shipping: s.Engine.Shipping(subtotal),
	}, nil
}

// AddItem validates the customization against the product's base price,
// then merges into an existing line for the same product or inserts a
// new one. A merge keeps the stored customization and reports
// created=false.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity int, c *models.Customization) (*models.CartItem, bool, error) {
	if quantity < 1 {
		return nil, false, ErrInvalidQuantity
	}
	product, err := s.Store.Product(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, fmt.Errorf("load product: %w", err)
	}
	if err := s.Engine.Validate(c); err != nil {
		return nil, false, err
	}
	if err := s.Engine.VerifyCustomPrice(product.Price, c); err != nil {
		return nil, false, err
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	item := &models.CartItem{
		CartID:        cart.ID,
		ProductID:     productID,
		Quantity:      uint(quantity),
		Customization: c,
	}
	created, err := s.Store.UpsertCartItem(ctx, item)
	if err != nil {
		return nil, false, fmt.Errorf("upsert cart item: %w", err)
	}

	s.publish(ctx, "cart.item_added", cart.ID, map[string]any{
		"cart_id":    cart.ID,
		"user_id":    userID,
		"product_id": productID,
		"quantity":   item.Quantity,
		"created":    created,
	})
	return item, created, nil
}

// UpdateQuantity sets the quantity on a line the user owns.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	updated, err := s.Store.UpdateCartItemQuantity(ctx, item.ID, quantity)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return updated, nil
}

// Remove deletes a line the user owns.
func (s *Service) Remove(ctx context.Context, userID, itemID uint) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteCartItem(ctx, item.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// Clear removes every line from the user's cart. Clearing a missing or
// already empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID uint) error {
	cart, err := s.Store.CartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}
	if err := s.Store.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.publish(ctx, "cart.cleared", cart.ID, map[string]any{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return nil
}

// ownedItem resolves itemID and checks it belongs to the user's cart.
// Items in other users' carts are indistinguishable from missing ones.
func (s *Service) ownedItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	item, err := s.Store.CartItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load cart item: %w", err)
	}
	cart, err := s.Store.CartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if item.CartID != cart.ID {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *Service) publish(ctx context.Context, event string, cartID uint, payload map[string]any) {
	payload["event"] = event
	if err := s.Producer.Publish(ctx, events.TopicCarts, fmt.Sprint(cartID), payload); err != nil {
		logging.FromContext(ctx).Warn("publish cart event failed", "event", event, "error", err)
	}
}
