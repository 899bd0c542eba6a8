package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product kinds.
const (
	ProductStock   = "stock"   // plain inventory item (cable, connectors, modems)
	ProductBundle  = "bundle"  // composite: sale deducts from its components
	ProductService = "service" // labor/fee item — deducts nothing
)

// Product represents inventory items, installation kits (bundles), and
// service fees sold through billing transactions.
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code         string          `gorm:"uniqueIndex;not null"`
	Name         string          `gorm:"index;not null"`
	Kind         string          `gorm:"type:varchar(20);not null;default:'stock'"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentStock int             `gorm:"not null;default:0"`
	MinStock     int             `gorm:"not null;default:5"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BundleItem is one recipe line of a bundle: selling the bundle deducts
// Quantity × soldQuantity units of the component product.
type BundleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BundleID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_bundle_component;not null"`
	ComponentID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_bundle_component;not null"`
	Quantity    int       `gorm:"not null"`

	Component *Product `gorm:"foreignKey:ComponentID"`
}

// InventoryMove registers each stock change on a product. One row per
// stock-affecting line item of a transaction, always paired with the stock
// delta applied to the product.
type InventoryMove struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	TransactionID *uuid.UUID `gorm:"type:uuid;index"`
	Quantity      int        `gorm:"not null"` // positive = in, negative = out
	StockBefore   int        `gorm:"not null"`
	StockAfter    int        `gorm:"not null"`
	Reason        string
	CreatedAt     time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
