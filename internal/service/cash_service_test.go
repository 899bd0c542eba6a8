package service

import (
	"context"
	"testing"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		MoraFee:             "45",
		DefaultExchangeRate: "36.60",
	}
}

func newTestCashService() (CashService, *stubCashRepo, *stubTxRepo) {
	cashRepo := newStubCashRepo()
	txRepo := newStubTxRepo()
	return NewCashService(cashRepo, txRepo, testConfig()), cashRepo, txRepo
}

func cashier(name string) *model.User {
	return &model.User{ID: uuid.New(), Username: name, Role: model.RoleCashier}
}

func admin(name string) *model.User {
	return &model.User{ID: uuid.New(), Username: name, Role: model.RoleAdmin}
}

// recordCashSale inserts a completed transaction directly into the stub.
func recordCashSale(txRepo *stubTxRepo, sessionID uuid.UUID, method string, amount int64) {
	_ = txRepo.CreateTx(nil, &model.Transaction{
		SessionID:     sessionID,
		UserID:        uuid.New(),
		Amount:        decimal.NewFromInt(amount),
		Type:          "payment",
		PaymentMethod: method,
		Status:        model.TxCompleted,
	})
}

func TestOpenSession(t *testing.T) {
	svc, _, _ := newTestCashService()
	userID := uuid.New()

	resp, err := svc.Open(context.Background(), userID, dto.OpenSessionRequest{
		StartAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SessionOpen, resp.Status)
	assert.Equal(t, "1000", resp.StartAmount.String())
	// Exchange rate falls back to the configured default when omitted.
	assert.Equal(t, "36.6", resp.ExchangeRate.String())
}

func TestOpenSessionAlreadyOpen(t *testing.T) {
	svc, _, _ := newTestCashService()
	userID := uuid.New()

	_, err := svc.Open(context.Background(), userID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), userID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(500)})
	assert.ErrorIs(t, err, apperror.ErrSessionAlreadyOpen)
}

func TestStatusNoOpenSession(t *testing.T) {
	svc, _, _ := newTestCashService()

	resp, err := svc.Status(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestAddMovementNoOpenSession(t *testing.T) {
	svc, _, _ := newTestCashService()

	err := svc.AddMovement(context.Background(), uuid.New(), dto.ManualMovementRequest{
		Type:        model.MovementOut,
		Amount:      decimal.NewFromInt(50),
		Description: "gasolina",
	})
	assert.ErrorIs(t, err, apperror.ErrNoOpenSession)
}

func TestAddMovementFallsBackToSharedSession(t *testing.T) {
	svc, cashRepo, _ := newTestCashService()
	owner := uuid.New()

	opened, err := svc.Open(context.Background(), owner, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(200)})
	require.NoError(t, err)

	// A collector without a drawer of their own lands on the open one.
	other := uuid.New()
	err = svc.AddMovement(context.Background(), other, dto.ManualMovementRequest{
		Type:        model.MovementIn,
		Amount:      decimal.NewFromInt(75),
		Description: "cobro en ruta",
	})
	require.NoError(t, err)

	require.Len(t, cashRepo.movements, 1)
	assert.Equal(t, opened.ID, cashRepo.movements[0].SessionID.String())
	assert.Equal(t, model.MovementIn, cashRepo.movements[0].Type)
}

func TestCloseSessionBalanced(t *testing.T) {
	svc, cashRepo, txRepo := newTestCashService()
	user := cashier("ana")

	opened, err := svc.Open(context.Background(), user.ID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	sessionID := uuid.MustParse(opened.ID)

	recordCashSale(txRepo, sessionID, model.PayCash, 500)
	// Card sales never count toward the physical drawer.
	recordCashSale(txRepo, sessionID, model.PayCard, 300)

	err = svc.AddMovement(context.Background(), user.ID, dto.ManualMovementRequest{
		Type:        model.MovementOut,
		Amount:      decimal.NewFromInt(50),
		Description: "compra de suministros",
	})
	require.NoError(t, err)

	// system = 1000 + 500 − 50 = 1450
	resp, err := svc.Close(context.Background(), user, dto.CloseSessionRequest{
		PhysicalAmount: decimal.NewFromInt(1450),
	})
	require.NoError(t, err)

	assert.Equal(t, "1450", resp.SystemTotal.String())
	assert.True(t, resp.Difference.IsZero())
	assert.Equal(t, "500", resp.CashSales.String())
	assert.Equal(t, "50", resp.ManualOut.String())
	assert.Equal(t, model.SessionClosed, resp.Status)

	closed := cashRepo.sessions[sessionID]
	assert.Equal(t, model.SessionClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	require.NotNil(t, closed.EndAmountSystem)
	assert.Equal(t, "1450", closed.EndAmountSystem.String())

	// Historical snapshot persisted alongside the close.
	require.Len(t, cashRepo.reports, 1)
	assert.Equal(t, "1450", cashRepo.reports[0].CashTotal.String())
	assert.Equal(t, "300", cashRepo.reports[0].CardAmount.String())
}

func TestCloseSessionSmallDifferenceWithinTolerance(t *testing.T) {
	svc, _, _ := newTestCashService()
	user := cashier("ana")

	_, err := svc.Open(context.Background(), user.ID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	resp, err := svc.Close(context.Background(), user, dto.CloseSessionRequest{
		PhysicalAmount: decimal.NewFromFloat(1000.30),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.3", resp.Difference.String())
}

func TestCloseSessionLargeDifferenceRequiresNote(t *testing.T) {
	svc, cashRepo, _ := newTestCashService()
	user := cashier("ana")

	opened, err := svc.Open(context.Background(), user.ID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), user, dto.CloseSessionRequest{
		PhysicalAmount: decimal.NewFromInt(980),
	})

	var jre *apperror.JustificationRequiredError
	require.ErrorAs(t, err, &jre)
	assert.Equal(t, "1000", jre.SystemTotal.String())
	assert.Equal(t, "980", jre.PhysicalAmount.String())
	assert.Equal(t, "-20", jre.Difference.String())

	// Rejected close leaves the session open.
	sessionID := uuid.MustParse(opened.ID)
	assert.Equal(t, model.SessionOpen, cashRepo.sessions[sessionID].Status)

	// Same close with a note goes through.
	note := "billete falso retirado del fondo"
	resp, err := svc.Close(context.Background(), user, dto.CloseSessionRequest{
		PhysicalAmount: decimal.NewFromInt(980),
		ClosingNote:    &note,
	})
	require.NoError(t, err)
	assert.Equal(t, "-20", resp.Difference.String())
	require.NotNil(t, cashRepo.sessions[sessionID].ClosingNote)
	assert.Equal(t, note, *cashRepo.sessions[sessionID].ClosingNote)
}

func TestCloseSessionOwnership(t *testing.T) {
	svc, _, _ := newTestCashService()
	owner := cashier("ana")
	intruder := cashier("luis")
	boss := admin("root")

	opened, err := svc.Open(context.Background(), owner.ID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(300)})
	require.NoError(t, err)

	// Another cashier cannot close someone else's drawer, even by id.
	_, err = svc.Close(context.Background(), intruder, dto.CloseSessionRequest{
		SessionID:      opened.ID,
		PhysicalAmount: decimal.NewFromInt(300),
	})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	// An admin can.
	resp, err := svc.Close(context.Background(), boss, dto.CloseSessionRequest{
		SessionID:      opened.ID,
		PhysicalAmount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionClosed, resp.Status)
}

func TestCloseSessionAlreadyClosed(t *testing.T) {
	svc, _, _ := newTestCashService()
	user := cashier("ana")

	opened, err := svc.Open(context.Background(), user.ID, dto.OpenSessionRequest{StartAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), user, dto.CloseSessionRequest{PhysicalAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), user, dto.CloseSessionRequest{
		SessionID:      opened.ID,
		PhysicalAmount: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, apperror.ErrNoOpenSession)
}
