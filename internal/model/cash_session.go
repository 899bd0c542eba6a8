package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session states and movement types.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"

	MovementIn  = "IN"
	MovementOut = "OUT"
)

// CashSession represents the lifecycle of a cashier's drawer.
// Status: "open" | "closed". At most one open session per user; sessions are
// terminated exactly once by a close that fixes all summary fields.
type CashSession struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// Close summary — nil while the session is open.
	EndAmountSystem   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EndAmountPhysical *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ClosingNote       *string
	ClosedBy          *uuid.UUID `gorm:"type:uuid"`
	Status            string     `gorm:"type:varchar(20);not null;default:'open'"`
	OpenedAt          time.Time `gorm:"autoCreateTime"`
	ClosedAt          *time.Time

	User      *User          `gorm:"foreignKey:UserID"`
	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// CashMovement is an immutable manual IN/OUT adjustment in the drawer ledger,
// independent of client transactions. Movements are NEVER modified or
// deleted — reversals create inverse entries.
type CashMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type        string          `gorm:"type:varchar(10);not null"` // IN | OUT
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	// ReferenceID links to the originating Transaction for refunds.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

// DrawerReport is the historical snapshot persisted when a session closes.
type DrawerReport struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID      uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	CashTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ClientCount    int             `gorm:"not null"`
	CashAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CashUSDAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TransferAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt      time.Time
}
