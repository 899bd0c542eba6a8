package service

import (
	"context"
	"fmt"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// closeTolerance is the maximum absolute cash difference a drawer may close
// with before a justification note becomes mandatory.
var closeTolerance = decimal.NewFromFloat(0.5)

type CashService interface {
	Status(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	AddMovement(ctx context.Context, userID uuid.UUID, req dto.ManualMovementRequest) error
	Close(ctx context.Context, requester *model.User, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error)
	Report(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
	History(ctx context.Context, page, limit int) ([]dto.SessionHistoryItem, int64, error)
}

type cashService struct {
	repo   repository.CashRepository
	txRepo repository.TransactionRepository
	cfg    *config.Config
}

func NewCashService(repo repository.CashRepository, txRepo repository.TransactionRepository, cfg *config.Config) CashService {
	return &cashService{repo: repo, txRepo: txRepo, cfg: cfg}
}

// ── Status ────────────────────────────────────────────────────────────────────

// Status returns the user's open session, or nil when the drawer is closed.
// No side effects.
func (s *cashService) Status(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	sesion, err := s.repo.FindOpenSessionByUser(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sessionToResponse(sesion), nil
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *cashService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	// Guard: at most one open session per user
	if existing, err := s.repo.FindOpenSessionByUser(ctx, userID); err == nil && existing != nil {
		return nil, apperror.ErrSessionAlreadyOpen
	}

	rate := req.ExchangeRate
	if rate.IsZero() {
		rate = s.cfg.ExchangeRate()
	}

	sesion := &model.CashSession{
		UserID:       userID,
		StartAmount:  req.StartAmount,
		ExchangeRate: rate,
		Status:       model.SessionOpen,
	}
	if err := s.repo.CreateSession(ctx, sesion); err != nil {
		return nil, err
	}
	return sessionToResponse(sesion), nil
}

// ── AddMovement ───────────────────────────────────────────────────────────────
// Manual IN / OUT adjustment. Movements are immutable — no Update/Delete.

func (s *cashService) AddMovement(ctx context.Context, userID uuid.UUID, req dto.ManualMovementRequest) error {
	var sesion *model.CashSession
	var err error

	if req.SessionID != "" {
		id, perr := uuid.Parse(req.SessionID)
		if perr != nil {
			return fmt.Errorf("invalid session_id: %w", perr)
		}
		sesion, err = s.repo.FindSessionByID(ctx, id)
		if err != nil || sesion.Status != model.SessionOpen {
			return apperror.ErrNoOpenSession
		}
	} else {
		sesion, err = s.resolveOpenSession(ctx, userID)
		if err != nil {
			return err
		}
	}

	mov := &model.CashMovement{
		SessionID:   sesion.ID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	}
	return s.repo.CreateMovement(ctx, mov)
}

// resolveOpenSession applies the two-step strategy: the user's own open
// session first, then the most recently opened open session system-wide.
func (s *cashService) resolveOpenSession(ctx context.Context, userID uuid.UUID) (*model.CashSession, error) {
	if sesion, err := s.repo.FindOpenSessionByUser(ctx, userID); err == nil {
		return sesion, nil
	}
	sesion, err := s.repo.FindLatestOpenSession(ctx)
	if err != nil {
		return nil, apperror.ErrNoOpenSession
	}
	return sesion, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// systemTotal = startAmount + cashSales + manualIn − manualOut, where
// cashSales counts only cash and foreign-currency-cash transactions.
//
// The open/ownership checks run INSIDE the same transaction as the writes —
// a separate round trip would race with a concurrent close.

func (s *cashService) Close(ctx context.Context, requester *model.User, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	var resp *dto.CloseSessionResponse

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.lockTargetSession(ctx, tx, requester.ID, req.SessionID)
		if err != nil {
			return err
		}
		if sesion.Status != model.SessionOpen {
			return apperror.ErrNoOpenSession
		}
		if sesion.UserID != requester.ID && !requester.IsAdmin() {
			return apperror.ErrPermissionDenied
		}

		cashSales, err := s.txRepo.SumCashSalesTx(tx, sesion.ID)
		if err != nil {
			return err
		}
		manualIn, manualOut, err := s.repo.SumManualMovementsTx(tx, sesion.ID)
		if err != nil {
			return err
		}

		systemTotal := sesion.StartAmount.Add(cashSales).Add(manualIn).Sub(manualOut)
		difference := req.PhysicalAmount.Sub(systemTotal)

		// Reconciliation gate: over-tolerance differences need a note.
		// Returning the error rolls back before any mutation is visible.
		if difference.Abs().GreaterThan(closeTolerance) &&
			(req.ClosingNote == nil || *req.ClosingNote == "") {
			return &apperror.JustificationRequiredError{
				SystemTotal:    systemTotal,
				PhysicalAmount: req.PhysicalAmount,
				Difference:     difference,
			}
		}

		byMethod, err := s.txRepo.SumByMethodTx(tx, sesion.ID)
		if err != nil {
			return err
		}
		clientCount, err := s.txRepo.CountDistinctClientsTx(tx, sesion.ID)
		if err != nil {
			return err
		}

		report := &model.DrawerReport{
			SessionID:      sesion.ID,
			CashTotal:      systemTotal,
			ClientCount:    clientCount,
			CashAmount:     byMethod[model.PayCash],
			CashUSDAmount:  byMethod[model.PayCashUSD],
			CardAmount:     byMethod[model.PayCard],
			TransferAmount: byMethod[model.PayTransfer],
		}
		if err := s.repo.CreateDrawerReportTx(tx, report); err != nil {
			return err
		}

		now := nowFn()
		physical := req.PhysicalAmount
		sesion.EndAmountSystem = &systemTotal
		sesion.EndAmountPhysical = &physical
		sesion.Difference = &difference
		sesion.ClosingNote = req.ClosingNote
		closedBy := requester.ID
		sesion.ClosedBy = &closedBy
		sesion.Status = model.SessionClosed
		sesion.ClosedAt = &now
		if err := s.repo.UpdateSessionTx(tx, sesion); err != nil {
			return err
		}

		resp = &dto.CloseSessionResponse{
			SessionID:      sesion.ID.String(),
			SystemTotal:    systemTotal,
			PhysicalAmount: req.PhysicalAmount,
			Difference:     difference,
			CashSales:      cashSales,
			ManualIn:       manualIn,
			ManualOut:      manualOut,
			ClientCount:    clientCount,
			Status:         model.SessionClosed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// lockTargetSession locks the session named in the request, or the
// requester's own open session when the request does not name one.
func (s *cashService) lockTargetSession(_ context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) (*model.CashSession, error) {
	if sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session_id: %w", err)
		}
		sesion, err := s.repo.FindSessionByIDTx(tx, id, true)
		if err != nil {
			return nil, apperror.ErrNotFound
		}
		return sesion, nil
	}
	sesion, err := s.repo.FindOpenSessionByUserTx(tx, userID)
	if err != nil {
		return nil, apperror.ErrNoOpenSession
	}
	// Re-read under lock: the lookup above is not locking.
	return s.repo.FindSessionByIDTx(tx, sesion.ID, true)
}

// ── Report / History ──────────────────────────────────────────────────────────

func (s *cashService) Report(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	sesion, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return sessionToResponse(sesion), nil
}

func (s *cashService) History(ctx context.Context, page, limit int) ([]dto.SessionHistoryItem, int64, error) {
	sessions, total, err := s.repo.ListClosedSessions(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.SessionHistoryItem, 0, len(sessions))
	for _, sesion := range sessions {
		item := dto.SessionHistoryItem{
			ID:          sesion.ID.String(),
			StartAmount: sesion.StartAmount,
			Difference:  sesion.Difference,
			OpenedAt:    sesion.OpenedAt.Format(timeLayout),
		}
		if sesion.User != nil {
			item.Cashier = sesion.User.Name
		}
		if sesion.ClosedAt != nil {
			t := sesion.ClosedAt.Format(timeLayout)
			item.ClosedAt = &t
		}
		items = append(items, item)
	}
	return items, total, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const timeLayout = "2006-01-02T15:04:05Z"

func sessionToResponse(s *model.CashSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:                s.ID.String(),
		UserID:            s.UserID.String(),
		StartAmount:       s.StartAmount,
		ExchangeRate:      s.ExchangeRate,
		Status:            s.Status,
		OpenedAt:          s.OpenedAt.Format(timeLayout),
		EndAmountSystem:   s.EndAmountSystem,
		EndAmountPhysical: s.EndAmountPhysical,
		Difference:        s.Difference,
		ClosingNote:       s.ClosingNote,
	}
	if s.User != nil {
		resp.Cashier = s.User.Name
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(timeLayout)
		resp.ClosedAt = &t
	}
	return resp
}
