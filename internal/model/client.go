package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client statuses.
const (
	ClientActive         = "active"
	ClientSuspended      = "suspended"
	ClientDisconnected   = "disconnected"
	ClientPendingInstall = "pending_install"
)

// Client is a subscriber of the cable/internet service.
//
// LastPaidMonth is the billing anchor: the last month of service the client
// has covered. It only advances via a recorded payment transaction and only
// regresses via that transaction's cancellation. Its day-of-month doubles as
// the client's cutoff day for mora purposes.
type Client struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractNumber string    `gorm:"uniqueIndex;not null"`
	DocumentID     string    `gorm:"index;not null"`
	Name           string    `gorm:"index;not null"`
	Phone          *string
	Address        *string
	Zone           *string
	PlanID         *uuid.UUID `gorm:"type:uuid;index"`
	LastPaidMonth  time.Time  `gorm:"not null"`
	// MoraBalance is the stored accrued late fee. When positive it takes
	// precedence over the flat configured fee as the displayed mora amount.
	MoraBalance      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MoraFlag         bool            `gorm:"not null;default:false"`
	Status           string          `gorm:"type:varchar(20);not null;default:'pending_install'"`
	LastPaymentDate  *time.Time
	ReconnectionDate *time.Time
	Active           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Plan *Plan `gorm:"foreignKey:PlanID"`
}

// Plan is a subscribable service plan (TV, internet, combo).
type Plan struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string          `gorm:"uniqueIndex;not null"`
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
