package repository

import (
	"context"

	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceOrderRepository interface {
	Create(ctx context.Context, o *model.ServiceOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.ServiceOrder, int64, error)
	Update(ctx context.Context, o *model.ServiceOrder) error

	// CreateTx is used when an order is auto-created inside a billing
	// transaction (installation kit sale, reconnection payment).
	CreateTx(tx *gorm.DB, o *model.ServiceOrder) error
}

type serviceOrderRepo struct{ db *gorm.DB }

func NewServiceOrderRepository(db *gorm.DB) ServiceOrderRepository {
	return &serviceOrderRepo{db: db}
}

func (r *serviceOrderRepo) Create(ctx context.Context, o *model.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *serviceOrderRepo) CreateTx(tx *gorm.DB, o *model.ServiceOrder) error {
	return tx.Create(o).Error
}

func (r *serviceOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	var o model.ServiceOrder
	err := r.db.WithContext(ctx).Preload("Client").First(&o, id).Error
	return &o, err
}

func (r *serviceOrderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.ServiceOrder, int64, error) {
	var orders []model.ServiceOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ServiceOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Client").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *serviceOrderRepo) Update(ctx context.Context, o *model.ServiceOrder) error {
	return r.db.WithContext(ctx).Save(o).Error
}
