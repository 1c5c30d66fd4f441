package storage

import (
	"context"
	"errors"

	"github.com/pawsomemeals/storefront/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract for the storefront. GormStore backs it
// in production; MemStore backs handler-level tests.
type Store interface {
	User(ctx context.Context, id uint) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error

	Products(ctx context.Context, offset, limit int) ([]models.Product, int64, error)
	Product(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error

	ProductReviews(ctx context.Context, productID uint) ([]models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) error

	CartByUser(ctx context.Context, userID uint) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	CartItems(ctx context.Context, cartID uint) ([]models.CartItem, error)
	CartItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error)
	CartItemByID(ctx context.Context, id uint) (*models.CartItem, error)
	// UpsertCartItem adds the item's quantity to an existing row for the same
	// (cart, product) pair, or inserts a new row. It reports whether a new row
	// was created. An existing row keeps its stored customization.
	UpsertCartItem(ctx context.Context, item *models.CartItem) (bool, error)
	UpdateCartItemQuantity(ctx context.Context, id uint, quantity int) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, id uint) error
	ClearCart(ctx context.Context, cartID uint) error

	OrdersByUser(ctx context.Context, userID uint) ([]models.Order, error)
	Order(ctx context.Context, id uint) (*models.Order, error)
	OrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	// CreateOrder persists the order and its items and clears the source cart
	// in a single transaction. cartID 0 skips the cart clear.
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, cartID uint) error
	UpdateOrderStatus(ctx context.Context, id uint, status string) error
}
