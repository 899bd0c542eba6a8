package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BundleItemRequest struct {
	ComponentID string `json:"component_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity"     validate:"required,min=1"`
}

type CreateProductRequest struct {
	Code     string          `json:"code"  validate:"required"`
	Name     string          `json:"name"  validate:"required,min=2"`
	Kind     string          `json:"kind"  validate:"required,oneof=stock bundle service"`
	Price    decimal.Decimal `json:"price" validate:"min=0"`
	Stock    int             `json:"stock" validate:"min=0"`
	MinStock int             `json:"min_stock" validate:"min=0"`
	// Items is the bundle recipe; required when kind=bundle, ignored otherwise.
	Items []BundleItemRequest `json:"items" validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name     *string             `json:"name"  validate:"omitempty,min=2"`
	Price    *decimal.Decimal    `json:"price"`
	MinStock *int                `json:"min_stock" validate:"omitempty,min=0"`
	Items    []BundleItemRequest `json:"items"     validate:"omitempty,dive"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ProductFilter struct {
	Search string `form:"search"`
	Kind   string `form:"kind"   validate:"omitempty,oneof=stock bundle service"`
	Active string `form:"active"` // "false" | "all" | default actives
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BundleItemResponse struct {
	ComponentID string `json:"component_id"`
	Component   string `json:"component"`
	Quantity    int    `json:"quantity"`
}

type ProductResponse struct {
	ID           string               `json:"id"`
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	Kind         string               `json:"kind"`
	Price        decimal.Decimal      `json:"price"`
	CurrentStock int                  `json:"current_stock"`
	MinStock     int                  `json:"min_stock"`
	Active       bool                 `json:"active"`
	Items        []BundleItemResponse `json:"items,omitempty"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
