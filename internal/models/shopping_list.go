package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListStatus is the lifecycle state of a shopping list.
type ListStatus string

const (
	ListStatusDraft     ListStatus = "draft"
	ListStatusPending   ListStatus = "pending"
	ListStatusConfirmed ListStatus = "confirmed"
	ListStatusDelivered ListStatus = "delivered"
	ListStatusCancelled ListStatus = "cancelled"
)

// ListStatuses lists every status in lifecycle order.
var ListStatuses = []ListStatus{
	ListStatusDraft, ListStatusPending, ListStatusConfirmed, ListStatusDelivered, ListStatusCancelled,
}

var listTransitions = map[ListStatus][]ListStatus{
	ListStatusDraft:     {ListStatusPending, ListStatusConfirmed, ListStatusCancelled},
	ListStatusPending:   {ListStatusDraft, ListStatusConfirmed, ListStatusCancelled},
	ListStatusConfirmed: {ListStatusDelivered, ListStatusCancelled},
}

// Valid reports whether s is a known status.
func (s ListStatus) Valid() bool {
	for _, known := range ListStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s ListStatus) Terminal() bool {
	return s == ListStatusDelivered || s == ListStatusCancelled
}

// CanTransitionTo reports whether a list in status s may move to next.
// Re-applying the current status is always allowed.
func (s ListStatus) CanTransitionTo(next ListStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	for _, allowed := range listTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShoppingList is a client's draft or ordered basket of catalog products.
type ShoppingList struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	ClientID  uint               `gorm:"index;not null" json:"client_id"`
	Client    *Client            `gorm:"foreignKey:ClientID" json:"-"`
	Status    ListStatus         `gorm:"size:20;not null;default:'draft'" json:"status"`
	Items     []ShoppingListItem `gorm:"foreignKey:ShoppingListID;constraint:OnDelete:CASCADE" json:"items"`
}

// GetClientID implements the Ownable interface.
func (l *ShoppingList) GetClientID() uint {
	return l.ClientID
}

// Total is ComputeTotal(l).
func (l *ShoppingList) Total() float64 {
	return ComputeTotal(l)
}

// ComputeTotal sums quantity × captured unit price over all lines.
// Arithmetic is done in decimal so that cents do not drift.
func ComputeTotal(l *ShoppingList) float64 {
	if l == nil {
		return 0
	}
	total := decimal.Zero
	for i := range l.Items {
		total = total.Add(l.Items[i].lineTotal())
	}
	return total.InexactFloat64()
}

// ShoppingListItem is one product line of a list. At most one line exists
// per product; the unit price is the catalog price when the line was created.
type ShoppingListItem struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	ShoppingListID uint          `gorm:"not null;uniqueIndex:idx_list_product" json:"shopping_list_id"`
	ShoppingList   *ShoppingList `gorm:"foreignKey:ShoppingListID" json:"-"`
	ProductID      uint          `gorm:"not null;uniqueIndex:idx_list_product;index" json:"product_id"`
	Product        *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int           `gorm:"not null" json:"quantity"`
	UnitPrice      float64       `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

func (item *ShoppingListItem) lineTotal() decimal.Decimal {
	return decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// LineTotal returns quantity × unit price.
func (item *ShoppingListItem) LineTotal() float64 {
	return item.lineTotal().InexactFloat64()
}
