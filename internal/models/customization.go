package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
	SizeXL     = "xl"
	SizeCustom = "custom"

	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"

	PurchaseOneTime      = "onetime"
	PurchaseSubscription = "subscription"
)

// Customization is the per-line choice set. It is stored as a JSON blob
// column on cart_items and order_items. CustomWeight is meaningful only
// for size "custom"; Frequency only for subscription purchases. When
// CustomPrice is set it is authoritative for the line.
type Customization struct {
	Protein      string   `json:"protein,omitempty"`
	Size         string   `json:"size,omitempty"`
	CustomWeight *float64 `json:"customWeight,omitempty"`
	Frequency    string   `json:"frequency,omitempty"`
	PurchaseType string   `json:"purchaseType,omitempty"`
	CustomPrice  *float64 `json:"customPrice,omitempty"`
}

// Clone returns a deep copy, used when an order item snapshots a cart
// line so the two never share pointers.
func (c *Customization) Clone() *Customization {
	if c == nil {
		return nil
	}
	cp := *c
	if c.CustomWeight != nil {
		w := *c.CustomWeight
		cp.CustomWeight = &w
	}
	if c.CustomPrice != nil {
		p := *c.CustomPrice
		cp.CustomPrice = &p
	}
	return &cp
}

func (c *Customization) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(*c)
}

func (c *Customization) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("customization: cannot scan %T", src)
	}
}
