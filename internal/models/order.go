package models

import (
	"encoding/json"
	"time"
)

// OrderStatusPending is the status every new order starts with.
// Status is otherwise free text.
const OrderStatusPending = "pending"

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID        string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string  `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36);not null;index"`
	Position  int     `json:"-" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice float64 `json:"unit_price" gorm:"not null;check:unit_price >= 0"` // price at the time of order
	Subtotal  float64 `json:"subtotal" gorm:"not null"`

	// Product is filled on reads while the catalog entry still exists.
	Product *Product `json:"-" gorm:"-"`
}

// ProductRef identifies a product that is no longer in the catalog.
type ProductRef struct {
	ID string `json:"id"`
}

// UserRef identifies the user an order belongs to.
type UserRef struct {
	ID string `json:"id"`
}

// MarshalJSON nests the product summary under "product", falling back to
// its ID alone when the product is gone.
func (it OrderItem) MarshalJSON() ([]byte, error) {
	type item OrderItem
	var product any = ProductRef{ID: it.ProductID}
	if it.Product != nil {
		product = it.Product
	}
	return json.Marshal(struct {
		item
		Product any `json:"product"`
	}{item(it), product})
}

// Order represents a customer order.
type Order struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string         `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Status      string         `json:"status" gorm:"type:varchar(50);not null;index"`
	TotalAmount float64        `json:"total_amount" gorm:"not null"`
	Address     *string        `json:"address" gorm:"type:varchar(255)"`
	Meta        map[string]any `json:"meta" gorm:"serializer:json;type:text"`
	Items       []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MarshalJSON adds the owning user as {"user": {"id": ...}} and renders a
// missing meta as an empty object.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	out := order(o)
	if out.Meta == nil {
		out.Meta = map[string]any{}
	}
	return json.Marshal(struct {
		order
		User UserRef `json:"user"`
	}{out, UserRef{ID: o.UserID}})
}
