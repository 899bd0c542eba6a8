package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateOrderRequest struct {
	ClientID string  `json:"client_id" validate:"required,uuid"`
	Type     string  `json:"type"      validate:"required,oneof=INSTALLATION REPAIR RECONNECTION"`
	Notes    *string `json:"notes"`
}

type AssignOrderRequest struct {
	TechnicianID string `json:"technician_id" validate:"required,uuid"`
}

type CompleteOrderRequest struct {
	Notes *string `json:"notes"`
}

type OrderFilter struct {
	Status   string `form:"status"    validate:"omitempty,oneof=PENDING ASSIGNED DONE CANCELLED"`
	Type     string `form:"type"      validate:"omitempty,oneof=INSTALLATION REPAIR RECONNECTION"`
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderResponse struct {
	ID           string  `json:"id"`
	ClientID     string  `json:"client_id"`
	Client       string  `json:"client,omitempty"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	TechnicianID *string `json:"technician_id,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ClosedAt     *string `json:"closed_at,omitempty"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
