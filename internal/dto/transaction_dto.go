package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TransactionItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// TransactionDetailsRequest is the typed details payload. months_paid is an
// int on purpose: a string value must fail binding, never concatenate.
type TransactionDetailsRequest struct {
	MonthsPaid       int             `json:"months_paid"       validate:"min=0"`
	MoraPaid         decimal.Decimal `json:"mora_paid"         validate:"min=0"`
	ReconnectionPaid bool            `json:"reconnection_paid"`
}

type CreateTransactionRequest struct {
	ClientID      *string                    `json:"client_id"      validate:"omitempty,uuid"`
	Amount        decimal.Decimal            `json:"amount"         validate:"required,gt=0"`
	Type          string                     `json:"type"           validate:"required"`
	PaymentMethod string                     `json:"payment_method" validate:"required,oneof=cash cash_usd card transfer"`
	Description   string                     `json:"description"`
	Items         []TransactionItemRequest   `json:"items"          validate:"omitempty,dive"`
	PlanID        *string                    `json:"plan_id"        validate:"omitempty,uuid"`
	Reference     *string                    `json:"reference"`
	Details       *TransactionDetailsRequest `json:"details"`
	CollectorID   *string                    `json:"collector_id"   validate:"omitempty,uuid"`
	ClientEmail   *string                    `json:"client_email"   validate:"omitempty,email"`
}

type CancelTransactionRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type TransactionFilter struct {
	Date      string `form:"date"`                      // YYYY-MM-DD; empty = today
	Status    string `form:"status,default=COMPLETED"`  // COMPLETED | CANCELLED | all
	SessionID string `form:"session_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionResponse struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	ClientID      *string         `json:"client_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	Reference     *string         `json:"reference,omitempty"`
	Description   string          `json:"description,omitempty"`
	MonthsPaid    int             `json:"months_paid"`
	CreatedAt     string          `json:"created_at"`
}

type CreateTransactionResponse struct {
	Msg           string `json:"msg"`
	TransactionID string `json:"transaction_id"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
