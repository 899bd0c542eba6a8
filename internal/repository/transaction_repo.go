package repository

import (
	"context"

	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error)

	// Used inside transactions — callers must pass the tx instance.
	CreateTx(tx *gorm.DB, t *model.Transaction) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Transaction, error)
	UpdateTx(tx *gorm.DB, t *model.Transaction) error
	// SumCashSalesTx sums the session's transactions whose payment method is
	// cash or foreign-currency cash, cancelled ones included: the money
	// entered the drawer at sale time, and the cancellation refund left it
	// as an OUT movement.
	SumCashSalesTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error)
	SumByMethodTx(tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error)
	CountDistinctClientsTx(tx *gorm.DB, sessionID uuid.UUID) (int, error)

	// Daily aggregates for the BI reports.
	DailySummary(ctx context.Context, date string) (total decimal.Decimal, count, clients int64, byMethod map[string]decimal.Decimal, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Preload("Client").First(&t, id).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Client").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&txs).Error
	return txs, total, err
}

// ── Tx variants ───────────────────────────────────────────────────────────────

func (r *transactionRepo) CreateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Create(t).Error
}

func (r *transactionRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Transaction, error) {
	var t model.Transaction
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&t, id).Error
	return &t, err
}

func (r *transactionRepo) UpdateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Save(t).Error
}

func (r *transactionRepo) SumCashSalesTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	// No status filter: excluding CANCELLED here while the refund OUT
	// movement also subtracts would take the amount out twice.
	err := tx.Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("session_id = ? AND payment_method IN ?",
			sessionID, []string{model.PayCash, model.PayCashUSD}).
		Scan(&total).Error
	return total, err
}

func (r *transactionRepo) SumByMethodTx(tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	type row struct {
		PaymentMethod string
		Total         decimal.Decimal
	}
	var rows []row
	err := tx.Model(&model.Transaction{}).
		Select("payment_method, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ? AND status = ?", sessionID, model.TxCompleted).
		Group("payment_method").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, rw := range rows {
		sums[rw.PaymentMethod] = rw.Total
	}
	return sums, nil
}

func (r *transactionRepo) CountDistinctClientsTx(tx *gorm.DB, sessionID uuid.UUID) (int, error) {
	var n int64
	err := tx.Model(&model.Transaction{}).
		Where("session_id = ? AND status = ? AND client_id IS NOT NULL", sessionID, model.TxCompleted).
		Distinct("client_id").Count(&n).Error
	return int(n), err
}

func (r *transactionRepo) DailySummary(ctx context.Context, date string) (decimal.Decimal, int64, int64, map[string]decimal.Decimal, error) {
	base := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("DATE(created_at) = ? AND status = ?", date, model.TxCompleted)

	var total decimal.Decimal
	if err := base.Session(&gorm.Session{}).Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return decimal.Zero, 0, 0, nil, err
	}
	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return decimal.Zero, 0, 0, nil, err
	}
	var clients int64
	if err := base.Session(&gorm.Session{}).Where("client_id IS NOT NULL").
		Distinct("client_id").Count(&clients).Error; err != nil {
		return decimal.Zero, 0, 0, nil, err
	}

	type row struct {
		PaymentMethod string
		Total         decimal.Decimal
	}
	var rows []row
	if err := base.Session(&gorm.Session{}).
		Select("payment_method, COALESCE(SUM(amount), 0) AS total").
		Group("payment_method").Scan(&rows).Error; err != nil {
		return decimal.Zero, 0, 0, nil, err
	}
	byMethod := make(map[string]decimal.Decimal, len(rows))
	for _, rw := range rows {
		byMethod[rw.PaymentMethod] = rw.Total
	}
	return total, count, clients, byMethod, nil
}
