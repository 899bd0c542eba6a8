package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// nowFn is swapped in tests to pin time-dependent behavior.
var nowFn = time.Now

// runTx wraps fn in a database transaction. A nil db means the service is
// running against in-memory stubs (unit tests); the stubs ignore the handle.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ReceiptNotifier enqueues an async payment-receipt job after a transaction
// commits. Implemented by the worker dispatcher; nil disables receipts.
type ReceiptNotifier interface {
	EnqueueReceipt(ctx context.Context, txID uuid.UUID, email string) error
}

type TransactionService interface {
	Create(ctx context.Context, actingUser *model.User, req dto.CreateTransactionRequest) (*dto.CreateTransactionResponse, error)
	Cancel(ctx context.Context, requester *model.User, id uuid.UUID, req dto.CancelTransactionRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error)
}

type transactionService struct {
	txRepo      repository.TransactionRepository
	cashRepo    repository.CashRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	orderRepo   repository.ServiceOrderRepository
	logRepo     repository.ClientLogRepository
	cfg         *config.Config
	notifier    ReceiptNotifier
}

func NewTransactionService(
	txRepo repository.TransactionRepository,
	cashRepo repository.CashRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.ServiceOrderRepository,
	logRepo repository.ClientLogRepository,
	cfg *config.Config,
	notifier ReceiptNotifier,
) TransactionService {
	return &transactionService{
		txRepo:      txRepo,
		cashRepo:    cashRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		logRepo:     logRepo,
		cfg:         cfg,
		notifier:    notifier,
	}
}

// expandedLine is one stock-affecting line after bundle expansion.
type expandedLine struct {
	product  *model.Product
	quantity int
}

// ── Create ────────────────────────────────────────────────────────────────────
//
// Everything below happens in ONE database transaction: session resolution,
// client lock, bundle expansion, stock decrement, service-order creation, the
// transaction row itself, the client billing-anchor update and the audit log
// entry. Any failure rolls the whole thing back.

func (s *transactionService) Create(ctx context.Context, actingUser *model.User, req dto.CreateTransactionRequest) (*dto.CreateTransactionResponse, error) {
	var created *model.Transaction
	var receiptEmail string

	err := runTx(ctx, s.txRepo.DB(), func(tx *gorm.DB) error {
		// 1. Session: the acting user's own open drawer, else the shared one.
		sesion, err := s.resolveOpenSessionTx(tx, actingUser.ID)
		if err != nil {
			return err
		}

		// 2. Client lock. Optional: walk-in sales carry no client.
		var client *model.Client
		if req.ClientID != nil && *req.ClientID != "" {
			clientID, perr := uuid.Parse(*req.ClientID)
			if perr != nil {
				return fmt.Errorf("invalid client_id: %w", perr)
			}
			client, err = s.clientRepo.FindByIDTx(tx, clientID, true)
			if err != nil {
				return apperror.ErrNotFound
			}
		}

		// 3–4. Expand bundles into components, then check-and-decrement stock
		// under row locks.
		lines, detailItems, err := s.expandItemsTx(tx, req.Items)
		if err != nil {
			return err
		}

		record := &model.Transaction{
			SessionID:     sesion.ID,
			UserID:        actingUser.ID,
			Amount:        req.Amount,
			Type:          req.Type,
			PaymentMethod: req.PaymentMethod,
			Status:        model.TxCompleted,
			Reference:     req.Reference,
			Description:   req.Description,
		}
		if client != nil {
			id := client.ID
			record.ClientID = &id
		}
		if req.CollectorID != nil && *req.CollectorID != "" {
			collectorID, perr := uuid.Parse(*req.CollectorID)
			if perr != nil {
				return fmt.Errorf("invalid collector_id: %w", perr)
			}
			record.CollectorID = &collectorID
		}
		if req.PlanID != nil && *req.PlanID != "" {
			planID, perr := uuid.Parse(*req.PlanID)
			if perr != nil {
				return fmt.Errorf("invalid plan_id: %w", perr)
			}
			record.PlanID = &planID
		}
		if req.Details != nil {
			record.Details = model.TransactionDetails{
				MonthsPaid:       req.Details.MonthsPaid,
				MoraPaid:         req.Details.MoraPaid,
				ReconnectionPaid: req.Details.ReconnectionPaid,
			}
		}
		record.Details.Items = detailItems
		if client != nil && record.Details.MonthsPaid > 0 {
			prev := client.LastPaidMonth
			record.Details.PreviousPaidMonth = &prev
		}

		// 6. Persist first so inventory moves and orders can reference it.
		if err := s.txRepo.CreateTx(tx, record); err != nil {
			return err
		}

		if err := s.applyStockTx(tx, record.ID, lines); err != nil {
			return err
		}

		// 5. Installation kit sold to a registered client opens an
		// installation order and parks the client until the tech closes it.
		if client != nil && containsInstallationItem(detailItems) {
			notes := "auto-created on installation kit sale"
			order := &model.ServiceOrder{
				ClientID: client.ID,
				Type:     model.OrderInstallation,
				Status:   model.OrderPending,
				Notes:    &notes,
			}
			if err := s.orderRepo.CreateTx(tx, order); err != nil {
				return err
			}
			client.Status = model.ClientPendingInstall
			if err := s.clientRepo.UpdateTx(tx, client); err != nil {
				return err
			}
		}

		// 7. Billing effects on the client.
		if client != nil {
			if err := s.applyBillingTx(tx, client, record); err != nil {
				return err
			}
		}

		// 8. Audit trail.
		entry := &model.ClientLog{
			UserID:      actingUser.ID,
			Action:      "transaction_created",
			Detail:      fmt.Sprintf("%s %s via %s", record.Type, record.Amount.StringFixed(2), record.PaymentMethod),
			ReferenceID: &record.ID,
		}
		if client != nil {
			id := client.ID
			entry.ClientID = &id
		}
		if err := s.logRepo.CreateTx(tx, entry); err != nil {
			return err
		}

		created = record
		if req.ClientEmail != nil {
			receiptEmail = *req.ClientEmail
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 9. Receipt goes out only after the commit; a queue hiccup must never
	// fail a recorded payment.
	if s.notifier != nil && receiptEmail != "" {
		if err := s.notifier.EnqueueReceipt(ctx, created.ID, receiptEmail); err != nil {
			log.Warn().Err(err).Str("transaction_id", created.ID.String()).
				Msg("failed to enqueue receipt")
		}
	}

	return &dto.CreateTransactionResponse{
		Msg:           "transaction recorded",
		TransactionID: created.ID.String(),
	}, nil
}

// resolveOpenSessionTx locks the acting user's open session, falling back to
// the most recently opened drawer (collectors hand cash to whoever has one).
func (s *transactionService) resolveOpenSessionTx(tx *gorm.DB, userID uuid.UUID) (*model.CashSession, error) {
	sesion, err := s.cashRepo.FindOpenSessionByUserTx(tx, userID)
	if err != nil {
		sesion, err = s.cashRepo.FindLatestOpenSessionTx(tx)
		if err != nil {
			return nil, apperror.ErrNoOpenSession
		}
	}
	return sesion, nil
}

// expandItemsTx resolves each requested line to its stock-affecting products.
// Bundles contribute their components (quantity multiplied); the detail items
// record what the cashier actually rang up.
func (s *transactionService) expandItemsTx(tx *gorm.DB, items []dto.TransactionItemRequest) ([]expandedLine, []model.DetailItem, error) {
	var lines []expandedLine
	var details []model.DetailItem

	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid product_id: %w", err)
		}
		product, err := s.productRepo.FindByIDTx(tx, productID, true)
		if err != nil {
			return nil, nil, apperror.ErrNotFound
		}

		details = append(details, model.DetailItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
		})

		switch product.Kind {
		case model.ProductBundle:
			components, err := s.productRepo.ListBundleItemsTx(tx, product.ID)
			if err != nil {
				return nil, nil, err
			}
			for _, comp := range components {
				cp, err := s.productRepo.FindByIDTx(tx, comp.ComponentID, true)
				if err != nil {
					return nil, nil, apperror.ErrNotFound
				}
				lines = append(lines, expandedLine{product: cp, quantity: comp.Quantity * item.Quantity})
			}
		case model.ProductStock:
			lines = append(lines, expandedLine{product: product, quantity: item.Quantity})
		default:
			// Service products carry no stock.
		}
	}
	return lines, details, nil
}

// applyStockTx verifies availability and decrements, writing one inventory
// move per line. The rows are already locked by expandItemsTx.
func (s *transactionService) applyStockTx(tx *gorm.DB, txID uuid.UUID, lines []expandedLine) error {
	for _, line := range lines {
		before := line.product.CurrentStock
		if before < line.quantity {
			return &apperror.InsufficientStockError{
				Product:   line.product.Name,
				Required:  line.quantity,
				Available: before,
			}
		}
		if err := s.productRepo.UpdateStockTx(tx, line.product.ID, -line.quantity); err != nil {
			return err
		}
		move := &model.InventoryMove{
			ProductID:     line.product.ID,
			TransactionID: &txID,
			Quantity:      -line.quantity,
			StockBefore:   before,
			StockAfter:    before - line.quantity,
			Reason:        "sale",
		}
		if err := s.productRepo.CreateMoveTx(tx, move); err != nil {
			return err
		}
	}
	return nil
}

// containsInstallationItem checks the items the cashier rang up, before bundle
// expansion: an installation can be a plain service product that never touches
// stock, or a bundle whose components carry unrelated names.
func containsInstallationItem(items []model.DetailItem) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), "instal") {
			return true
		}
	}
	return false
}

// addMonths shifts t by n whole months, clamping the day to the target
// month's length. Plain AddDate normalizes the overflow (Nov 30 + 3 months
// passes through Feb 30 and lands on Mar 2), drifting month-end anchors.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// applyBillingTx advances the client's billing anchor and clears mora.
//
// LastPaidMonth moves by exactly Details.MonthsPaid whole months — the value
// arrives as an int, so a malformed payload fails binding upstream instead of
// jumping years.
func (s *transactionService) applyBillingTx(tx *gorm.DB, client *model.Client, record *model.Transaction) error {
	now := nowFn()
	dirty := false

	if record.Details.MonthsPaid > 0 {
		client.LastPaidMonth = addMonths(client.LastPaidMonth, record.Details.MonthsPaid)
		client.LastPaymentDate = &now
		// Paying forward always counts as restoring service: mora is wiped
		// and a suspended or disconnected client comes back. A client still
		// waiting for the installer stays pending_install.
		client.MoraBalance = decimal.Zero
		client.MoraFlag = false
		if client.Status == model.ClientSuspended || client.Status == model.ClientDisconnected {
			client.Status = model.ClientActive
		}
		dirty = true
	}

	if record.Details.MoraPaid.IsPositive() {
		client.MoraBalance = client.MoraBalance.Sub(record.Details.MoraPaid)
		if !client.MoraBalance.IsPositive() {
			client.MoraBalance = decimal.Zero
			client.MoraFlag = false
		}
		dirty = true
	}

	if record.Details.ReconnectionPaid {
		client.Status = model.ClientActive
		client.ReconnectionDate = &now
		notes := "auto-created on reconnection payment"
		order := &model.ServiceOrder{
			ClientID: client.ID,
			Type:     model.OrderReconnection,
			Status:   model.OrderPending,
			Notes:    &notes,
		}
		if err := s.orderRepo.CreateTx(tx, order); err != nil {
			return err
		}
		dirty = true
	}

	if !dirty {
		return nil
	}
	return s.clientRepo.UpdateTx(tx, client)
}

// ── Cancel ────────────────────────────────────────────────────────────────────
//
// Reverses the monetary and billing effects exactly once. Inventory is NOT
// restored: cancelled material stays written off and is readjusted manually
// if it comes back to the warehouse.

func (s *transactionService) Cancel(ctx context.Context, requester *model.User, id uuid.UUID, req dto.CancelTransactionRequest) error {
	if strings.TrimSpace(req.Reason) == "" {
		return apperror.ErrReasonRequired
	}

	return runTx(ctx, s.txRepo.DB(), func(tx *gorm.DB) error {
		record, err := s.txRepo.FindByIDTx(tx, id, true)
		if err != nil {
			return apperror.ErrNotFound
		}
		if record.Status == model.TxCancelled {
			return apperror.ErrAlreadyCancelled
		}
		// Tighter than the drawer rules: only the recording cashier or an
		// admin may void a payment.
		if record.UserID != requester.ID && !requester.IsAdmin() {
			return apperror.ErrPermissionDenied
		}

		// The refund needs an open drawer to leave from. The originating
		// session may already be closed and reconciled — never touch it.
		sesion, err := s.resolveOpenSessionTx(tx, requester.ID)
		if err != nil {
			return err
		}

		if model.IsCashMethod(record.PaymentMethod) {
			refund := &model.CashMovement{
				SessionID:   sesion.ID,
				Type:        model.MovementOut,
				Amount:      record.Amount,
				Description: "refund: " + req.Reason,
				ReferenceID: &record.ID,
			}
			if err := s.cashRepo.CreateMovementTx(tx, refund); err != nil {
				return err
			}
		}

		// Regress the client's billing anchor and restore mora.
		if record.ClientID != nil {
			client, err := s.clientRepo.FindByIDTx(tx, *record.ClientID, true)
			if err != nil {
				return apperror.ErrNotFound
			}
			dirty := false
			if record.Details.MonthsPaid > 0 {
				if record.Details.PreviousPaidMonth != nil {
					client.LastPaidMonth = *record.Details.PreviousPaidMonth
				} else {
					client.LastPaidMonth = addMonths(client.LastPaidMonth, -record.Details.MonthsPaid)
				}
				dirty = true
			}
			if record.Details.MoraPaid.IsPositive() {
				client.MoraBalance = client.MoraBalance.Add(record.Details.MoraPaid)
				client.MoraFlag = true
				dirty = true
			}
			if record.Details.ReconnectionPaid {
				client.Status = model.ClientSuspended
				client.ReconnectionDate = nil
				dirty = true
			}
			if dirty {
				if err := s.clientRepo.UpdateTx(tx, client); err != nil {
					return err
				}
			}
		}

		now := nowFn()
		reason := req.Reason
		cancelledBy := requester.ID
		record.Status = model.TxCancelled
		record.CancelReason = &reason
		record.CancelledBy = &cancelledBy
		record.CancelledAt = &now
		if err := s.txRepo.UpdateTx(tx, record); err != nil {
			return err
		}

		entry := &model.ClientLog{
			ClientID:    record.ClientID,
			UserID:      requester.ID,
			Action:      "transaction_cancelled",
			Detail:      fmt.Sprintf("refund %s, reason: %s", record.Amount.StringFixed(2), req.Reason),
			ReferenceID: &record.ID,
		}
		return s.logRepo.CreateTx(tx, entry)
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	record, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return record, nil
}

func (s *transactionService) List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	return s.txRepo.List(ctx, filter)
}
