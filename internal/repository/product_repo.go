package repository

import (
	"context"

	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products, bundle
// recipes and inventory moves. Services depend on this interface, not on the
// concrete GORM implementation, enabling unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Bundle recipe
	ListBundleItems(ctx context.Context, bundleID uuid.UUID) ([]model.BundleItem, error)
	ReplaceBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID, items []model.BundleItem) error
	ListBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID) ([]model.BundleItem, error)

	// Used inside transactions — callers must pass the tx instance.
	CreateTx(tx *gorm.DB, p *model.Product) error
	UpdateTx(tx *gorm.DB, p *model.Product) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Product, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	CreateMoveTx(tx *gorm.DB, m *model.InventoryMove) error

	ListMoves(ctx context.Context, productID uuid.UUID, limit int) ([]model.InventoryMove, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("code = ? AND active = true", code).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active filter: "false" = inactive, "all" = everything, default actives
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("code = ? OR name ILIKE ?", filter.Search, like)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("name ASC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error
}

// ── Bundle recipe ─────────────────────────────────────────────────────────────

func (r *productRepo) ListBundleItems(ctx context.Context, bundleID uuid.UUID) ([]model.BundleItem, error) {
	var items []model.BundleItem
	err := r.db.WithContext(ctx).Preload("Component").
		Where("bundle_id = ?", bundleID).Find(&items).Error
	return items, err
}

func (r *productRepo) ListBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID) ([]model.BundleItem, error) {
	var items []model.BundleItem
	err := tx.Where("bundle_id = ?", bundleID).Find(&items).Error
	return items, err
}

// ReplaceBundleItemsTx swaps the whole recipe inside one transaction so a
// concurrent sale never observes a half-replaced bundle.
func (r *productRepo) ReplaceBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID, items []model.BundleItem) error {
	if err := tx.Where("bundle_id = ?", bundleID).Delete(&model.BundleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// ── Tx variants ───────────────────────────────────────────────────────────────

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Save(p).Error
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Product, error) {
	var p model.Product
	q := tx
	if forUpdate {
		// Row lock so the stock check-then-decrement is atomic under
		// concurrent sales.
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&p, id).Error
	return &p, err
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("current_stock", gorm.Expr("current_stock + ?", delta)).Error
}

func (r *productRepo) CreateMoveTx(tx *gorm.DB, m *model.InventoryMove) error {
	return tx.Create(m).Error
}

func (r *productRepo) ListMoves(ctx context.Context, productID uuid.UUID, limit int) ([]model.InventoryMove, error) {
	var moves []model.InventoryMove
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).
		Find(&moves).Error
	return moves, err
}
