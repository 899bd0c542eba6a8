package repository

import (
	"context"

	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientLogRepository appends to the audit trail. Entries are immutable —
// there is deliberately no Update or Delete.
type ClientLogRepository interface {
	Create(ctx context.Context, l *model.ClientLog) error
	CreateTx(tx *gorm.DB, l *model.ClientLog) error
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.ClientLog, error)
}

type clientLogRepo struct{ db *gorm.DB }

func NewClientLogRepository(db *gorm.DB) ClientLogRepository { return &clientLogRepo{db: db} }

func (r *clientLogRepo) Create(ctx context.Context, l *model.ClientLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *clientLogRepo) CreateTx(tx *gorm.DB, l *model.ClientLog) error {
	return tx.Create(l).Error
}

func (r *clientLogRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]model.ClientLog, error) {
	var logs []model.ClientLog
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").Limit(limit).
		Find(&logs).Error
	return logs, err
}
