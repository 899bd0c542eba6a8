package model

import (
	"time"

	"github.com/google/uuid"
)

// Service order types and statuses.
const (
	OrderInstallation = "INSTALLATION"
	OrderRepair       = "REPAIR"
	OrderReconnection = "RECONNECTION"

	OrderPending   = "PENDING"
	OrderAssigned  = "ASSIGNED"
	OrderDone      = "DONE"
	OrderCancelled = "CANCELLED"
)

// ServiceOrder is a dispatchable field-work ticket for a client.
type ServiceOrder struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type         string     `gorm:"type:varchar(20);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	TechnicianID *uuid.UUID `gorm:"type:uuid;index"`
	Notes        *string
	CreatedAt    time.Time
	ClosedAt     *time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}
