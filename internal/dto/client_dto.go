package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateClientRequest struct {
	ContractNumber string  `json:"contract_number" validate:"required"`
	DocumentID     string  `json:"document_id"     validate:"required"`
	Name           string  `json:"name"            validate:"required,min=3"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	Zone           *string `json:"zone"`
	PlanID         *string `json:"plan_id"        validate:"omitempty,uuid"`
	// LastPaidMonth anchors billing; YYYY-MM-DD. Defaults to today.
	LastPaidMonth string `json:"last_paid_month" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=3"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Zone    *string `json:"zone"`
	PlanID  *string `json:"plan_id" validate:"omitempty,uuid"`
	Status  *string `json:"status"  validate:"omitempty,oneof=active suspended disconnected pending_install"`
}

type ClientFilter struct {
	Search string `form:"search"` // contract number, document or name
	Zone   string `form:"zone"`
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClientResponse struct {
	ID             string          `json:"id"`
	ContractNumber string          `json:"contract_number"`
	DocumentID     string          `json:"document_id"`
	Name           string          `json:"name"`
	Phone          *string         `json:"phone,omitempty"`
	Address        *string         `json:"address,omitempty"`
	Zone           *string         `json:"zone,omitempty"`
	Plan           *string         `json:"plan,omitempty"`
	LastPaidMonth  string          `json:"last_paid_month"`
	MoraBalance    decimal.Decimal `json:"mora_balance"`
	Status         string          `json:"status"`
}

type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// DebtResponse is the arrears status of one client as of "now".
type DebtResponse struct {
	ClientID    string          `json:"client_id"`
	MonthsOwed  int             `json:"months_owed"`
	HasMora     bool            `json:"has_mora"`
	OwedMonths  []string        `json:"owed_months"`
	MoraAmount  decimal.Decimal `json:"mora_amount"`
	MonthlyFee  decimal.Decimal `json:"monthly_fee"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	CutoffDay   int             `json:"cutoff_day"`
	LastPaid    string          `json:"last_paid_month"`
	Status      string          `json:"status"`
}
