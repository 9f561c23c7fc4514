// Package inventory is the resource-server side of the system: a stateless
// CRUD service that trusts validated bearer tokens and guards its write
// path's dependency on the user service with a circuit breaker.
package inventory

import "time"

// Item is a stock item owned by a user.
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	SKU       string    `gorm:"size:64;uniqueIndex;not null" json:"sku"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	OwnerID   uint      `gorm:"index;not null" json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the table name.
func (Item) TableName() string { return "inventory_items" }
