package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction statuses and payment methods.
const (
	TxCompleted = "COMPLETED"
	TxCancelled = "CANCELLED"

	PayCash     = "cash"
	PayCashUSD  = "cash_usd"
	PayCard     = "card"
	PayTransfer = "transfer"
)

// IsCashMethod reports whether a payment method counts toward the physical
// drawer total at close (local or foreign-currency cash).
func IsCashMethod(method string) bool {
	return method == PayCash || method == PayCashUSD
}

// DetailItem is one sold line inside a transaction's details payload.
type DetailItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
}

// TransactionDetails is the typed payload stored on every transaction.
// MonthsPaid is declared as an integer so a string payload fails JSON binding
// instead of silently concatenating into a multi-year jump.
type TransactionDetails struct {
	MonthsPaid       int             `json:"months_paid"`
	MoraPaid         decimal.Decimal `json:"mora_paid"`
	ReconnectionPaid bool            `json:"reconnection_paid"`
	Items            []DetailItem    `json:"items,omitempty"`
	// PreviousPaidMonth snapshots the client's billing anchor before a months
	// payment. A cancellation restores it verbatim — month arithmetic alone
	// cannot round-trip a month-end anchor.
	PreviousPaidMonth *time.Time `json:"previous_paid_month,omitempty"`
}

// Transaction is a billing payment (or walk-in sale) tied to a cash session
// and optionally to a client. Once CANCELLED its monetary and client-date
// effects are fully reversed exactly once.
type Transaction struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index"`
	CollectorID *uuid.UUID `gorm:"type:uuid"`
	PlanID      *uuid.UUID `gorm:"type:uuid"`
	// UserID is the acting user who recorded the payment.
	UserID        uuid.UUID       `gorm:"type:uuid;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Type          string          `gorm:"type:varchar(30);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	Reference     *string         `gorm:"index"`
	Description   string
	Details       TransactionDetails `gorm:"serializer:json"`
	CancelReason  *string
	CancelledBy   *uuid.UUID `gorm:"type:uuid"`
	CancelledAt   *time.Time
	CreatedAt     time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}

// ClientLog is the append-only audit trail: one entry per mutating action
// (payment, cancellation, material use, service completion). Never updated
// or deleted.
type ClientLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null"`
	Action      string     `gorm:"type:varchar(40);not null"`
	Detail      string     `gorm:"not null"`
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}
