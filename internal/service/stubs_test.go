package service

// In-memory repository stubs backing the unit tests. They implement the full
// repository interfaces; the *Tx variants ignore the (nil) tx handle.

import (
	"context"
	"time"

	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── CashRepository stub ───────────────────────────────────────────────────────

type stubCashRepo struct {
	sessions  map[uuid.UUID]*model.CashSession
	movements []model.CashMovement
	reports   []model.DrawerReport
}

func newStubCashRepo() *stubCashRepo {
	return &stubCashRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

var _ repository.CashRepository = (*stubCashRepo)(nil)

func (r *stubCashRepo) DB() *gorm.DB { return nil }

func (r *stubCashRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *stubCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCashRepo) FindOpenSessionByUser(_ context.Context, userID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashRepo) FindLatestOpenSession(_ context.Context) (*model.CashSession, error) {
	var latest *model.CashSession
	for _, s := range r.sessions {
		if s.Status != model.SessionOpen {
			continue
		}
		if latest == nil || s.OpenedAt.After(latest.OpenedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *stubCashRepo) UpdateSession(_ context.Context, s *model.CashSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *stubCashRepo) ListClosedSessions(_ context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var closed []model.CashSession
	for _, s := range r.sessions {
		if s.Status == model.SessionClosed {
			closed = append(closed, *s)
		}
	}
	return closed, int64(len(closed)), nil
}

func (r *stubCashRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubCashRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCashRepo) FindSessionByIDTx(_ *gorm.DB, id uuid.UUID, _ bool) (*model.CashSession, error) {
	return r.FindSessionByID(context.Background(), id)
}

func (r *stubCashRepo) FindOpenSessionByUserTx(_ *gorm.DB, userID uuid.UUID) (*model.CashSession, error) {
	return r.FindOpenSessionByUser(context.Background(), userID)
}

func (r *stubCashRepo) FindLatestOpenSessionTx(_ *gorm.DB) (*model.CashSession, error) {
	return r.FindLatestOpenSession(context.Background())
}

func (r *stubCashRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	return r.CreateMovement(context.Background(), m)
}

func (r *stubCashRepo) SumManualMovementsTx(_ *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	in, out := decimal.Zero, decimal.Zero
	for _, m := range r.movements {
		if m.SessionID != sessionID {
			continue
		}
		switch m.Type {
		case model.MovementIn:
			in = in.Add(m.Amount)
		case model.MovementOut:
			out = out.Add(m.Amount)
		}
	}
	return in, out, nil
}

func (r *stubCashRepo) UpdateSessionTx(_ *gorm.DB, s *model.CashSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *stubCashRepo) CreateDrawerReportTx(_ *gorm.DB, rep *model.DrawerReport) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	r.reports = append(r.reports, *rep)
	return nil
}

// ── TransactionRepository stub ────────────────────────────────────────────────

type stubTxRepo struct {
	txs map[uuid.UUID]*model.Transaction
}

func newStubTxRepo() *stubTxRepo {
	return &stubTxRepo{txs: make(map[uuid.UUID]*model.Transaction)}
}

var _ repository.TransactionRepository = (*stubTxRepo)(nil)

func (r *stubTxRepo) DB() *gorm.DB { return nil }

func (r *stubTxRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.txs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTxRepo) List(_ context.Context, _ dto.TransactionFilter) ([]model.Transaction, int64, error) {
	out := make([]model.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTxRepo) CreateTx(_ *gorm.DB, t *model.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	r.txs[t.ID] = t
	return nil
}

func (r *stubTxRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID, _ bool) (*model.Transaction, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubTxRepo) UpdateTx(_ *gorm.DB, t *model.Transaction) error {
	r.txs[t.ID] = t
	return nil
}

func (r *stubTxRepo) SumCashSalesTx(_ *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	// Cancelled transactions stay in, mirroring the real query: the refund
	// is accounted for by its OUT movement.
	total := decimal.Zero
	for _, t := range r.txs {
		if t.SessionID == sessionID && model.IsCashMethod(t.PaymentMethod) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (r *stubTxRepo) SumByMethodTx(_ *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, t := range r.txs {
		if t.SessionID == sessionID && t.Status == model.TxCompleted {
			sums[t.PaymentMethod] = sums[t.PaymentMethod].Add(t.Amount)
		}
	}
	return sums, nil
}

func (r *stubTxRepo) CountDistinctClientsTx(_ *gorm.DB, sessionID uuid.UUID) (int, error) {
	seen := make(map[uuid.UUID]bool)
	for _, t := range r.txs {
		if t.SessionID == sessionID && t.Status == model.TxCompleted && t.ClientID != nil {
			seen[*t.ClientID] = true
		}
	}
	return len(seen), nil
}

func (r *stubTxRepo) DailySummary(_ context.Context, date string) (decimal.Decimal, int64, int64, map[string]decimal.Decimal, error) {
	total := decimal.Zero
	var count int64
	seen := make(map[uuid.UUID]bool)
	byMethod := make(map[string]decimal.Decimal)
	for _, t := range r.txs {
		if t.Status != model.TxCompleted || t.CreatedAt.Format("2006-01-02") != date {
			continue
		}
		total = total.Add(t.Amount)
		count++
		byMethod[t.PaymentMethod] = byMethod[t.PaymentMethod].Add(t.Amount)
		if t.ClientID != nil {
			seen[*t.ClientID] = true
		}
	}
	return total, count, int64(len(seen)), byMethod, nil
}

// ── ClientRepository stub ─────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) FindByContract(_ context.Context, contract string) (*model.Client, error) {
	for _, c := range r.clients {
		if c.ContractNumber == contract && c.Active {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClientRepo) List(_ context.Context, _ dto.ClientFilter) ([]model.Client, int64, error) {
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) ListDebtors(_ context.Context, before string, limit int) ([]model.Client, error) {
	cutoff, err := time.Parse("2006-01-02", before)
	if err != nil {
		return nil, err
	}
	var out []model.Client
	for _, c := range r.clients {
		if c.Active && c.Status != model.ClientDisconnected && c.LastPaidMonth.Before(cutoff) {
			out = append(out, *c)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clients[id]; ok {
		c.Active = false
	}
	return nil
}

func (r *stubClientRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID, _ bool) (*model.Client, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubClientRepo) UpdateTx(_ *gorm.DB, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

// ── ProductRepository stub ────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	bundles  map[uuid.UUID][]model.BundleItem
	moves    []model.InventoryMove
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		bundles:  make(map[uuid.UUID][]model.BundleItem),
	}
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) ListBundleItems(_ context.Context, bundleID uuid.UUID) ([]model.BundleItem, error) {
	return r.bundles[bundleID], nil
}

func (r *stubProductRepo) ListBundleItemsTx(_ *gorm.DB, bundleID uuid.UUID) ([]model.BundleItem, error) {
	return r.bundles[bundleID], nil
}

func (r *stubProductRepo) ReplaceBundleItemsTx(_ *gorm.DB, bundleID uuid.UUID, items []model.BundleItem) error {
	r.bundles[bundleID] = items
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	return r.Create(context.Background(), p)
}

func (r *stubProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID, _ bool) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if p, ok := r.products[id]; ok {
		p.CurrentStock += delta
	}
	return nil
}

func (r *stubProductRepo) CreateMoveTx(_ *gorm.DB, m *model.InventoryMove) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.moves = append(r.moves, *m)
	return nil
}

func (r *stubProductRepo) ListMoves(_ context.Context, productID uuid.UUID, _ int) ([]model.InventoryMove, error) {
	var out []model.InventoryMove
	for _, m := range r.moves {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── ServiceOrderRepository stub ───────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.ServiceOrder
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.ServiceOrder)}
}

var _ repository.ServiceOrderRepository = (*stubOrderRepo)(nil)

func (r *stubOrderRepo) Create(_ context.Context, o *model.ServiceOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.ServiceOrder) error {
	return r.Create(context.Background(), o)
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.ServiceOrder, int64, error) {
	var out []model.ServiceOrder
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Type != "" && o.Type != filter.Type {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) Update(_ context.Context, o *model.ServiceOrder) error {
	r.orders[o.ID] = o
	return nil
}

// ── ClientLogRepository stub ──────────────────────────────────────────────────

type stubLogRepo struct {
	entries []model.ClientLog
}

var _ repository.ClientLogRepository = (*stubLogRepo)(nil)

func (r *stubLogRepo) Create(_ context.Context, l *model.ClientLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = time.Now()
	r.entries = append(r.entries, *l)
	return nil
}

func (r *stubLogRepo) CreateTx(_ *gorm.DB, l *model.ClientLog) error {
	return r.Create(context.Background(), l)
}

func (r *stubLogRepo) ListByClient(_ context.Context, clientID uuid.UUID, _ int) ([]model.ClientLog, error) {
	var out []model.ClientLog
	for _, l := range r.entries {
		if l.ClientID != nil && *l.ClientID == clientID {
			out = append(out, l)
		}
	}
	return out, nil
}
