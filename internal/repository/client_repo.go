package repository

import (
	"context"

	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByContract(ctx context.Context, contract string) (*model.Client, error)
	List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error)
	ListDebtors(ctx context.Context, before string, limit int) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Client, error)
	UpdateTx(tx *gorm.DB, c *model.Client) error
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Preload("Plan").First(&c, id).Error
	return &c, err
}

func (r *clientRepo) FindByContract(ctx context.Context, contract string) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("contract_number = ? AND active = true", contract).First(&c).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Client{}).Where("active = true")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("contract_number = ? OR document_id = ? OR name ILIKE ?",
			filter.Search, filter.Search, like)
	}
	if filter.Zone != "" {
		q = q.Where("zone = ?", filter.Zone)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Plan").
		Order("name ASC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&clients).Error
	return clients, total, err
}

// ListDebtors returns active-contract clients whose billing anchor is older
// than the cutoff date (YYYY-MM-DD), most delinquent first.
func (r *clientRepo) ListDebtors(ctx context.Context, before string, limit int) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).
		Where("active = true AND status <> ? AND last_paid_month < ?", model.ClientDisconnected, before).
		Order("last_paid_month ASC").
		Limit(limit).
		Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("active", false).Error
}

func (r *clientRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Client, error) {
	var c model.Client
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&c, id).Error
	return &c, err
}

func (r *clientRepo) UpdateTx(tx *gorm.DB, c *model.Client) error {
	return tx.Save(c).Error
}
