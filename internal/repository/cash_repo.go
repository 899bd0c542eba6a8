package repository

import (
	"context"
	"errors"

	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CashRepository owns cash sessions, drawer movements and close snapshots.
//
// Session resolution is a two-step strategy exposed as named lookups so both
// callers (recorder and canceller) and their tests can target each branch:
// FindOpenSessionByUser first, FindLatestOpenSession as the shared fallback.
type CashRepository interface {
	CreateSession(ctx context.Context, s *model.CashSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindOpenSessionByUser(ctx context.Context, userID uuid.UUID) (*model.CashSession, error)
	FindLatestOpenSession(ctx context.Context) (*model.CashSession, error)
	UpdateSession(ctx context.Context, s *model.CashSession) error
	ListClosedSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)

	CreateMovement(ctx context.Context, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)

	// Used inside transactions — callers must pass the tx instance.
	FindSessionByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.CashSession, error)
	FindOpenSessionByUserTx(tx *gorm.DB, userID uuid.UUID) (*model.CashSession, error)
	FindLatestOpenSessionTx(tx *gorm.DB) (*model.CashSession, error)
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	SumManualMovementsTx(tx *gorm.DB, sessionID uuid.UUID) (in, out decimal.Decimal, err error)
	UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error
	CreateDrawerReportTx(tx *gorm.DB, r *model.DrawerReport) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) DB() *gorm.DB { return r.db }

func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("User").Preload("Movements").First(&s, id).Error
	return &s, err
}

func (r *cashRepo) FindOpenSessionByUser(ctx context.Context, userID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = 'open'", userID).
		Order("opened_at DESC").First(&s).Error
	return &s, err
}

func (r *cashRepo) FindLatestOpenSession(ctx context.Context) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("status = 'open'").
		Order("opened_at DESC").First(&s).Error
	return &s, err
}

func (r *cashRepo) UpdateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *cashRepo) ListClosedSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CashSession{}).Where("status = 'closed'")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").
		Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *cashRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cashRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

// ── Tx variants ───────────────────────────────────────────────────────────────

func (r *cashRepo) FindSessionByIDTx(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.CashSession, error) {
	var s model.CashSession
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&s, id).Error
	return &s, err
}

func (r *cashRepo) FindOpenSessionByUserTx(tx *gorm.DB, userID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.Where("user_id = ? AND status = 'open'", userID).
		Order("opened_at DESC").First(&s).Error
	return &s, err
}

func (r *cashRepo) FindLatestOpenSessionTx(tx *gorm.DB) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.Where("status = 'open'").Order("opened_at DESC").First(&s).Error
	return &s, err
}

func (r *cashRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *cashRepo) SumManualMovementsTx(tx *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Type  string
		Total decimal.Decimal
	}
	var rows []row
	err := tx.Model(&model.CashMovement{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ?", sessionID).
		Group("type").Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	in, out := decimal.Zero, decimal.Zero
	for _, rw := range rows {
		switch rw.Type {
		case model.MovementIn:
			in = rw.Total
		case model.MovementOut:
			out = rw.Total
		}
	}
	return in, out, nil
}

func (r *cashRepo) UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error {
	return tx.Save(s).Error
}

func (r *cashRepo) CreateDrawerReportTx(tx *gorm.DB, rep *model.DrawerReport) error {
	return tx.Create(rep).Error
}

// IsNotFound reports whether err is GORM's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
