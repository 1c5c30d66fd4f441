package storage

import (
	"context"
	"sync"
	"time"

	"github.com/pawsomemeals/storefront/internal/models"
)

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu sync.Mutex

	nextID uint

	users         map[uint]models.User
	refreshTokens map[string]models.RefreshToken
	products      map[uint]models.Product
	reviews       map[uint]models.Review
	carts         map[uint]models.Cart
	cartItems     map[uint]models.CartItem
	orders        map[uint]models.Order
	orderItems    map[uint]models.OrderItem
}

func NewMemStore() *MemStore {
	return &MemStore{
		nextID:        1,
		users:         make(map[uint]models.User),
		refreshTokens: make(map[string]models.RefreshToken),
		products:      make(map[uint]models.Product),
		reviews:       make(map[uint]models.Review),
		carts:         make(map[uint]models.Cart),
		cartItems:     make(map[uint]models.CartItem),
		orders:        make(map[uint]models.Order),
		orderItems:    make(map[uint]models.OrderItem),
	}
}

func (s *MemStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *MemStore) User(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.id()
	s.users[user.ID] = *user
	return nil
}

func (s *MemStore) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = s.id()
	s.refreshTokens[token.Token] = *token
	return nil
}

func (s *MemStore) RefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.refreshTokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (s *MemStore) RevokeRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.refreshTokens[token]; ok {
		row.Revoked = true
		s.refreshTokens[token] = row
	}
	return nil
}

func (s *MemStore) Products(_ context.Context, offset, limit int) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Product, 0, len(s.products))
	for id := uint(1); id < s.nextID; id++ {
		if p, ok := s.products[id]; ok {
			all = append(all, p)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *MemStore) Product(_ context.Context, id uint) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (s *MemStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = s.id()
	s.products[product.ID] = *product
	return nil
}

func (s *MemStore) SaveProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == 0 {
		product.ID = s.id()
	}
	s.products[product.ID] = *product
	return nil
}

func (s *MemStore) DeleteProduct(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemStore) ProductReviews(_ context.Context, productID uint) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reviews []models.Review
	for id := uint(1); id < s.nextID; id++ {
		if r, ok := s.reviews[id]; ok && r.ProductID == productID {
			reviews = append(reviews, r)
		}
	}
	return reviews, nil
}

func (s *MemStore) CreateReview(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	review.ID = s.id()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	s.reviews[review.ID] = *review
	return nil
}

func (s *MemStore) CartByUser(_ context.Context, userID uint) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cart := range s.carts {
		if cart.UserID == userID {
			c := cart
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) CreateCart(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart.ID = s.id()
	s.carts[cart.ID] = *cart
	return nil
}

func (s *MemStore) CartItems(_ context.Context, cartID uint) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.CartItem
	for id := uint(1); id < s.nextID; id++ {
		if item, ok := s.cartItems[id]; ok && item.CartID == cartID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *MemStore) CartItem(_ context.Context, cartID, productID uint) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCartItem(cartID, productID)
}

func (s *MemStore) findCartItem(cartID, productID uint) (*models.CartItem, error) {
	for _, item := range s.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			i := item
			return &i, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) CartItemByID(_ context.Context, id uint) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.cartItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemStore) UpsertCartItem(_ context.Context, item *models.CartItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, err := s.findCartItem(item.CartID, item.ProductID); err == nil {
		existing.Quantity += item.Quantity
		s.cartItems[existing.ID] = *existing
		*item = *existing
		return false, nil
	}
	item.ID = s.id()
	s.cartItems[item.ID] = *item
	return true, nil
}

func (s *MemStore) UpdateCartItemQuantity(_ context.Context, id uint, quantity int) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.cartItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.Quantity = uint(quantity)
	s.cartItems[id] = item
	return &item, nil
}

func (s *MemStore) DeleteCartItem(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cartItems[id]; !ok {
		return ErrNotFound
	}
	delete(s.cartItems, id)
	return nil
}

func (s *MemStore) ClearCart(_ context.Context, cartID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.cartItems {
		if item.CartID == cartID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func (s *MemStore) OrdersByUser(_ context.Context, userID uint) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for id := uint(1); id < s.nextID; id++ {
		if order, ok := s.orders[id]; ok && order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *MemStore) Order(_ context.Context, id uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *MemStore) OrderItems(_ context.Context, orderID uint) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.OrderItem
	for id := uint(1); id < s.nextID; id++ {
		if item, ok := s.orderItems[id]; ok && item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *MemStore) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem, cartID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = s.id()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	s.orders[order.ID] = *order
	for i := range items {
		items[i].ID = s.id()
		items[i].OrderID = order.ID
		s.orderItems[items[i].ID] = items[i]
	}
	if cartID != 0 {
		for id, item := range s.cartItems {
			if item.CartID == cartID {
				delete(s.cartItems, id)
			}
		}
	}
	return nil
}

func (s *MemStore) UpdateOrderStatus(_ context.Context, id uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	s.orders[id] = order
	return nil
}
