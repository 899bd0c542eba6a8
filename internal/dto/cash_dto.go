package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	StartAmount decimal.Decimal `json:"start_amount"  validate:"min=0"`
	// ExchangeRate defaults to the configured rate when omitted or zero.
	ExchangeRate decimal.Decimal `json:"exchange_rate" validate:"min=0"`
}

type ManualMovementRequest struct {
	SessionID   string          `json:"session_id"  validate:"omitempty,uuid"`
	Type        string          `json:"type"        validate:"required,oneof=IN OUT"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

type CloseSessionRequest struct {
	SessionID      string          `json:"session_id"      validate:"omitempty,uuid"`
	PhysicalAmount decimal.Decimal `json:"physical_amount" validate:"min=0"`
	ClosingNote    *string         `json:"closing_note"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Cashier      string          `json:"cashier,omitempty"`
	StartAmount  decimal.Decimal `json:"start_amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Status       string          `json:"status"`
	OpenedAt     string          `json:"opened_at"`
	ClosedAt     *string         `json:"closed_at,omitempty"`

	EndAmountSystem   *decimal.Decimal `json:"end_amount_system,omitempty"`
	EndAmountPhysical *decimal.Decimal `json:"end_amount_physical,omitempty"`
	Difference        *decimal.Decimal `json:"difference,omitempty"`
	ClosingNote       *string          `json:"closing_note,omitempty"`
}

type CloseSessionResponse struct {
	SessionID      string          `json:"session_id"`
	SystemTotal    decimal.Decimal `json:"system_total"`
	PhysicalAmount decimal.Decimal `json:"physical_amount"`
	Difference     decimal.Decimal `json:"difference"`
	CashSales      decimal.Decimal `json:"cash_sales"`
	ManualIn       decimal.Decimal `json:"manual_in"`
	ManualOut      decimal.Decimal `json:"manual_out"`
	ClientCount    int             `json:"client_count"`
	Status         string          `json:"status"`
}

type SessionHistoryItem struct {
	ID          string           `json:"id"`
	Cashier     string           `json:"cashier"`
	StartAmount decimal.Decimal  `json:"start_amount"`
	Difference  *decimal.Decimal `json:"difference,omitempty"`
	OpenedAt    string           `json:"opened_at"`
	ClosedAt    *string          `json:"closed_at,omitempty"`
}
