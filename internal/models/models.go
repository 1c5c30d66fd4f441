package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	Role      string    `gorm:"not null"            json:"role"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

// Product rows are owned by the catalog. Rating and ReviewCount are the
// only fields mutated after creation, recomputed when a review lands.
type Product struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"not null"                 json:"name"`
	Description  string  `gorm:"not null"                 json:"description"`
	Protein      string  `gorm:"not null"                 json:"protein"`
	Price        float64 `gorm:"not null"                 json:"price"`
	ImageURL     string  `json:"image_url"`
	IsBestseller bool    `gorm:"default:false"            json:"is_bestseller"`
	Rating       float64 `gorm:"default:0"                json:"rating"`
	ReviewCount  int     `gorm:"default:0"                json:"review_count"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Rating    int       `gorm:"not null"       json:"rating"`
	Comment   string    `gorm:"not null"       json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// One cart per user; created lazily on first access.
type Cart struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// The (cart_id, product_id) unique index makes merge-or-insert race-safe:
// two concurrent adds of the same product cannot produce two rows.
type CartItem struct {
	ID            uint           `gorm:"primaryKey"                            json:"id"`
	CartID        uint           `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID     uint           `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity      uint           `gorm:"default:1;check:quantity>0"            json:"quantity"`
	Customization *Customization `gorm:"type:jsonb"                            json:"customization,omitempty"`
}

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Subtotal, shipping and total are frozen at creation time and never
// recomputed. Only Status changes after creation.
type Order struct {
	ID              uint      `gorm:"primaryKey"     json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Subtotal        float64   `gorm:"not null"       json:"subtotal"`
	Shipping        float64   `gorm:"not null"       json:"shipping"`
	Total           float64   `gorm:"not null"       json:"total"`
	Status          string    `gorm:"not null"       json:"status"`
	ShippingAddress string    `gorm:"not null"       json:"shipping_address"`
	ShippingCity    string    `gorm:"not null"       json:"shipping_city"`
	ShippingState   string    `gorm:"not null"       json:"shipping_state"`
	ShippingZip     string    `gorm:"not null"       json:"shipping_zip"`
	ShippingCountry string    `gorm:"not null"       json:"shipping_country"`
	CreatedAt       time.Time `json:"created_at"`
}

// Price is the price-at-purchase, copied at order creation and immune to
// later catalog changes. Customization is a snapshot, not a reference.
type OrderItem struct {
	ID            uint           `gorm:"primaryKey"     json:"id"`
	OrderID       uint           `gorm:"index;not null" json:"order_id"`
	ProductID     uint           `gorm:"not null"       json:"product_id"`
	Quantity      uint           `gorm:"not null"       json:"quantity"`
	Price         float64        `gorm:"not null"       json:"price"`
	Customization *Customization `gorm:"type:jsonb"     json:"customization,omitempty"`
}

var statusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusCompleted},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func ValidStatusTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
