package service

import (
	"context"
	"testing"
	"time"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	txIDs  []uuid.UUID
	emails []string
}

func (n *captureNotifier) EnqueueReceipt(_ context.Context, txID uuid.UUID, email string) error {
	n.txIDs = append(n.txIDs, txID)
	n.emails = append(n.emails, email)
	return nil
}

type txTestEnv struct {
	svc         TransactionService
	txRepo      *stubTxRepo
	cashRepo    *stubCashRepo
	clientRepo  *stubClientRepo
	productRepo *stubProductRepo
	orderRepo   *stubOrderRepo
	logRepo     *stubLogRepo
	notifier    *captureNotifier
}

func newTxTestEnv() *txTestEnv {
	env := &txTestEnv{
		txRepo:      newStubTxRepo(),
		cashRepo:    newStubCashRepo(),
		clientRepo:  newStubClientRepo(),
		productRepo: newStubProductRepo(),
		orderRepo:   newStubOrderRepo(),
		logRepo:     &stubLogRepo{},
		notifier:    &captureNotifier{},
	}
	env.svc = NewTransactionService(
		env.txRepo, env.cashRepo, env.clientRepo, env.productRepo,
		env.orderRepo, env.logRepo, testConfig(), env.notifier,
	)
	return env
}

func (env *txTestEnv) openSessionFor(userID uuid.UUID) *model.CashSession {
	sesion := &model.CashSession{
		UserID:      userID,
		StartAmount: decimal.NewFromInt(1000),
		Status:      model.SessionOpen,
	}
	_ = env.cashRepo.CreateSession(context.Background(), sesion)
	return sesion
}

func (env *txTestEnv) seedClient(anchor time.Time, status string) *model.Client {
	client := &model.Client{
		ContractNumber: "C-" + uuid.NewString()[:8],
		DocumentID:     "001-123456-0001X",
		Name:           "Juan Pérez",
		LastPaidMonth:  anchor,
		Status:         status,
		Active:         true,
	}
	_ = env.clientRepo.Create(context.Background(), client)
	return client
}

func (env *txTestEnv) seedProduct(name, kind string, stock int) *model.Product {
	p := &model.Product{
		Code:         "P-" + uuid.NewString()[:8],
		Name:         name,
		Kind:         kind,
		CurrentStock: stock,
		Active:       true,
	}
	_ = env.productRepo.Create(context.Background(), p)
	return p
}

func monthlyPayment(clientID string, months int, method string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		ClientID:      &clientID,
		Amount:        decimal.NewFromInt(int64(months) * 350),
		Type:          "payment",
		PaymentMethod: method,
		Details:       &dto.TransactionDetailsRequest{MonthsPaid: months},
	}
}

func TestCreatePaymentAdvancesBillingAnchor(t *testing.T) {
	frozen := date(2025, time.August, 20)
	nowFn = func() time.Time { return frozen }
	defer func() { nowFn = time.Now }()

	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientSuspended)
	client.MoraBalance = decimal.NewFromInt(45)
	client.MoraFlag = true

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 3, model.PayCash))
	require.NoError(t, err)
	require.NotEmpty(t, resp.TransactionID)

	// Anchor moves by exactly 3 whole months, preserving the cutoff day.
	assert.Equal(t, date(2025, time.August, 18), client.LastPaidMonth)
	assert.Equal(t, model.ClientActive, client.Status)
	require.NotNil(t, client.LastPaymentDate)
	assert.Equal(t, frozen, *client.LastPaymentDate)

	// Paying forward restores service: mora wiped along with the advance.
	assert.True(t, client.MoraBalance.IsZero())
	assert.False(t, client.MoraFlag)

	require.Len(t, env.logRepo.entries, 1)
	assert.Equal(t, "transaction_created", env.logRepo.entries[0].Action)
}

func TestCreateNoOpenSession(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	_, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 1, model.PayCash))
	assert.ErrorIs(t, err, apperror.ErrNoOpenSession)
}

func TestCreateFallsBackToSharedSession(t *testing.T) {
	env := newTxTestEnv()
	shared := env.openSessionFor(uuid.New()) // someone else's drawer

	user := cashier("collector")
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 1, model.PayCash))
	require.NoError(t, err)

	record := env.txRepo.txs[uuid.MustParse(resp.TransactionID)]
	assert.Equal(t, shared.ID, record.SessionID)
}

func TestCreateDecrementsStock(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	cable := env.seedProduct("Cable coaxial 10m", model.ProductStock, 10)

	_, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		Amount:        decimal.NewFromInt(120),
		Type:          "sale",
		PaymentMethod: model.PayCash,
		Items: []dto.TransactionItemRequest{
			{ProductID: cable.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, cable.CurrentStock)
	require.Len(t, env.productRepo.moves, 1)
	move := env.productRepo.moves[0]
	assert.Equal(t, -2, move.Quantity)
	assert.Equal(t, 10, move.StockBefore)
	assert.Equal(t, 8, move.StockAfter)
	assert.Equal(t, "sale", move.Reason)
}

func TestCreateInsufficientStock(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	modem := env.seedProduct("Modem DOCSIS", model.ProductStock, 3)

	_, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		Amount:        decimal.NewFromInt(500),
		Type:          "sale",
		PaymentMethod: model.PayCash,
		Items: []dto.TransactionItemRequest{
			{ProductID: modem.ID.String(), Quantity: 5},
		},
	})

	var ise *apperror.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "Modem DOCSIS", ise.Product)
	assert.Equal(t, 5, ise.Required)
	assert.Equal(t, 3, ise.Available)
}

func TestCreateExpandsBundleIntoComponents(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)

	connector := env.seedProduct("Conector F", model.ProductStock, 20)
	splitter := env.seedProduct("Splitter 2 vías", model.ProductStock, 9)
	kit := env.seedProduct("Kit de conexión", model.ProductBundle, 0)
	env.productRepo.bundles[kit.ID] = []model.BundleItem{
		{BundleID: kit.ID, ComponentID: connector.ID, Quantity: 2},
		{BundleID: kit.ID, ComponentID: splitter.ID, Quantity: 1},
	}

	resp, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		Amount:        decimal.NewFromInt(900),
		Type:          "sale",
		PaymentMethod: model.PayCash,
		Items: []dto.TransactionItemRequest{
			{ProductID: kit.ID.String(), Quantity: 3},
		},
	})
	require.NoError(t, err)

	// 3 kits × (2 connectors + 1 splitter)
	assert.Equal(t, 14, connector.CurrentStock)
	assert.Equal(t, 6, splitter.CurrentStock)

	// The detail records what the cashier rang up, not the expansion.
	record := env.txRepo.txs[uuid.MustParse(resp.TransactionID)]
	require.Len(t, record.Details.Items, 1)
	assert.Equal(t, kit.ID, record.Details.Items[0].ProductID)
	assert.Equal(t, 3, record.Details.Items[0].Quantity)
}

func TestCreateInstallationKitOpensOrder(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)
	kit := env.seedProduct("Kit de instalación", model.ProductStock, 5)

	id := client.ID.String()
	_, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		ClientID:      &id,
		Amount:        decimal.NewFromInt(1500),
		Type:          "sale",
		PaymentMethod: model.PayCash,
		Items: []dto.TransactionItemRequest{
			{ProductID: kit.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ClientPendingInstall, client.Status)
	require.Len(t, env.orderRepo.orders, 1)
	for _, order := range env.orderRepo.orders {
		assert.Equal(t, model.OrderInstallation, order.Type)
		assert.Equal(t, model.OrderPending, order.Status)
		assert.Equal(t, client.ID, order.ClientID)
	}
}

func TestCreateClearsMora(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)
	client.MoraBalance = decimal.NewFromInt(45)
	client.MoraFlag = true

	id := client.ID.String()
	_, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		ClientID:      &id,
		Amount:        decimal.NewFromInt(60),
		Type:          "payment",
		PaymentMethod: model.PayCash,
		Details:       &dto.TransactionDetailsRequest{MoraPaid: decimal.NewFromInt(60)},
	})
	require.NoError(t, err)

	// Overpaying mora floors the balance at zero, never negative.
	assert.True(t, client.MoraBalance.IsZero())
	assert.False(t, client.MoraFlag)
}

func TestCreateReconnectionPayment(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.March, 18), model.ClientSuspended)

	id := client.ID.String()
	_, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		ClientID:      &id,
		Amount:        decimal.NewFromInt(200),
		Type:          "reconnection",
		PaymentMethod: model.PayCash,
		Details:       &dto.TransactionDetailsRequest{ReconnectionPaid: true},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ClientActive, client.Status)
	assert.NotNil(t, client.ReconnectionDate)
	require.Len(t, env.orderRepo.orders, 1)
	for _, order := range env.orderRepo.orders {
		assert.Equal(t, model.OrderReconnection, order.Type)
	}
}

func TestCreateEnqueuesReceiptAfterCommit(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	email := "juan@example.com"
	req := monthlyPayment(id, 1, model.PayCash)
	req.ClientEmail = &email

	resp, err := env.svc.Create(context.Background(), user, req)
	require.NoError(t, err)

	require.Len(t, env.notifier.txIDs, 1)
	assert.Equal(t, resp.TransactionID, env.notifier.txIDs[0].String())
	assert.Equal(t, email, env.notifier.emails[0])
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func TestCancelReasonRequired(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")

	err := env.svc.Cancel(context.Background(), user, uuid.New(), dto.CancelTransactionRequest{Reason: "   "})
	assert.ErrorIs(t, err, apperror.ErrReasonRequired)
}

func TestCancelCashPaymentRefundsAndRegresses(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	anchor := date(2025, time.May, 18)
	client := env.seedClient(anchor, model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 2, model.PayCash))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.July, 18), client.LastPaidMonth)

	txID := uuid.MustParse(resp.TransactionID)
	err = env.svc.Cancel(context.Background(), user, txID, dto.CancelTransactionRequest{Reason: "monto equivocado"})
	require.NoError(t, err)

	// Anchor regressed to where it was.
	assert.Equal(t, anchor, client.LastPaidMonth)

	record := env.txRepo.txs[txID]
	assert.Equal(t, model.TxCancelled, record.Status)
	require.NotNil(t, record.CancelReason)
	assert.Equal(t, "monto equivocado", *record.CancelReason)
	require.NotNil(t, record.CancelledBy)
	assert.Equal(t, user.ID, *record.CancelledBy)
	assert.NotNil(t, record.CancelledAt)

	// Refund lands in the drawer ledger referencing the transaction.
	require.Len(t, env.cashRepo.movements, 1)
	refund := env.cashRepo.movements[0]
	assert.Equal(t, model.MovementOut, refund.Type)
	assert.Equal(t, record.Amount.String(), refund.Amount.String())
	require.NotNil(t, refund.ReferenceID)
	assert.Equal(t, txID, *refund.ReferenceID)
}

func TestCancelDoesNotRestoreStock(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	cable := env.seedProduct("Cable coaxial 10m", model.ProductStock, 10)

	resp, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		Amount:        decimal.NewFromInt(120),
		Type:          "sale",
		PaymentMethod: model.PayCash,
		Items: []dto.TransactionItemRequest{
			{ProductID: cable.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 8, cable.CurrentStock)

	err = env.svc.Cancel(context.Background(), user, uuid.MustParse(resp.TransactionID), dto.CancelTransactionRequest{Reason: "cliente desistió"})
	require.NoError(t, err)

	// Written-off material is readjusted manually if it comes back.
	assert.Equal(t, 8, cable.CurrentStock)
}

func TestCancelTwiceRejected(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 1, model.PayCash))
	require.NoError(t, err)

	txID := uuid.MustParse(resp.TransactionID)
	require.NoError(t, env.svc.Cancel(context.Background(), user, txID, dto.CancelTransactionRequest{Reason: "error de captura"}))

	err = env.svc.Cancel(context.Background(), user, txID, dto.CancelTransactionRequest{Reason: "error de captura"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyCancelled)

	// The reversal happened exactly once.
	assert.Equal(t, date(2025, time.May, 18), client.LastPaidMonth)
	assert.Len(t, env.cashRepo.movements, 1)
}

func TestCancelOwnership(t *testing.T) {
	env := newTxTestEnv()
	owner := cashier("ana")
	intruder := cashier("luis")
	boss := admin("root")
	env.openSessionFor(owner.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), owner, monthlyPayment(id, 1, model.PayCash))
	require.NoError(t, err)
	txID := uuid.MustParse(resp.TransactionID)

	err = env.svc.Cancel(context.Background(), intruder, txID, dto.CancelTransactionRequest{Reason: "no procede"})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	require.NoError(t, env.svc.Cancel(context.Background(), boss, txID, dto.CancelTransactionRequest{Reason: "autorizado por gerencia"}))
}

func TestCancelNonCashLeavesDrawerAlone(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 1, model.PayCard))
	require.NoError(t, err)

	err = env.svc.Cancel(context.Background(), user, uuid.MustParse(resp.TransactionID), dto.CancelTransactionRequest{Reason: "contracargo"})
	require.NoError(t, err)

	// Card money never entered the drawer, so no OUT movement.
	assert.Empty(t, env.cashRepo.movements)
}

func TestCreateInstallationServiceOpensOrder(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)
	install := env.seedProduct("Instalación de servicio", model.ProductService, 0)

	id := client.ID.String()
	_, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		ClientID:      &id,
		Amount:        decimal.NewFromInt(800),
		Type:          "sale",
		PaymentMethod: model.PayCash,
		Items: []dto.TransactionItemRequest{
			{ProductID: install.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	// A service item deducts nothing but still schedules the install.
	assert.Empty(t, env.productRepo.moves)
	assert.Equal(t, model.ClientPendingInstall, client.Status)
	require.Len(t, env.orderRepo.orders, 1)
	for _, order := range env.orderRepo.orders {
		assert.Equal(t, model.OrderInstallation, order.Type)
		assert.Equal(t, model.OrderPending, order.Status)
	}
}

func TestCreatePaymentReactivatesDisconnectedClient(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.February, 10), model.ClientDisconnected)

	id := client.ID.String()
	_, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 3, model.PayCash))
	require.NoError(t, err)

	assert.Equal(t, model.ClientActive, client.Status)
}

func TestCancelReconnectionSuspendsAgain(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.March, 18), model.ClientSuspended)
	client.MoraBalance = decimal.NewFromInt(45)
	client.MoraFlag = true

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		ClientID:      &id,
		Amount:        decimal.NewFromInt(245),
		Type:          "reconnection",
		PaymentMethod: model.PayCash,
		Details: &dto.TransactionDetailsRequest{
			MoraPaid:         decimal.NewFromInt(45),
			ReconnectionPaid: true,
		},
	})
	require.NoError(t, err)
	require.Equal(t, model.ClientActive, client.Status)
	require.False(t, client.MoraFlag)

	err = env.svc.Cancel(context.Background(), user, uuid.MustParse(resp.TransactionID), dto.CancelTransactionRequest{Reason: "pago rebotado"})
	require.NoError(t, err)

	assert.Equal(t, model.ClientSuspended, client.Status)
	assert.Nil(t, client.ReconnectionDate)
	assert.Equal(t, "45", client.MoraBalance.String())
	assert.True(t, client.MoraFlag)
}

func TestCancelRequiresOpenSession(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	sesion := env.openSessionFor(user.ID)
	client := env.seedClient(date(2025, time.May, 18), model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 1, model.PayCash))
	require.NoError(t, err)
	txID := uuid.MustParse(resp.TransactionID)

	// Drawer closed and reconciled before the client comes back to void.
	sesion.Status = model.SessionClosed

	err = env.svc.Cancel(context.Background(), user, txID, dto.CancelTransactionRequest{Reason: "monto equivocado"})
	assert.ErrorIs(t, err, apperror.ErrNoOpenSession)

	// Nothing moved: no refund, no status flip, no anchor regress.
	assert.Empty(t, env.cashRepo.movements)
	assert.Equal(t, model.TxCompleted, env.txRepo.txs[txID].Status)
	assert.Equal(t, date(2025, time.June, 18), client.LastPaidMonth)

	// With a fresh drawer the refund leaves from it, never the closed one.
	fresh := env.openSessionFor(user.ID)
	require.NoError(t, env.svc.Cancel(context.Background(), user, txID, dto.CancelTransactionRequest{Reason: "monto equivocado"}))
	require.Len(t, env.cashRepo.movements, 1)
	assert.Equal(t, fresh.ID, env.cashRepo.movements[0].SessionID)
}

func TestCloseBalancesAfterCancel(t *testing.T) {
	env := newTxTestEnv()
	cashSvc := NewCashService(env.cashRepo, env.txRepo, testConfig())
	user := cashier("ana")
	env.openSessionFor(user.ID)

	resp, err := env.svc.Create(context.Background(), user, dto.CreateTransactionRequest{
		Amount:        decimal.NewFromInt(350),
		Type:          "sale",
		PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.Cancel(context.Background(), user, uuid.MustParse(resp.TransactionID),
		dto.CancelTransactionRequest{Reason: "cliente desistió"}))

	// Sale in, refund out: the drawer holds exactly what it started with.
	closed, err := cashSvc.Close(context.Background(), user, dto.CloseSessionRequest{
		PhysicalAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", closed.SystemTotal.String())
	assert.True(t, closed.Difference.IsZero())
	assert.Equal(t, "350", closed.CashSales.String())
	assert.Equal(t, "350", closed.ManualOut.String())
}

func TestCancelMonthEndAnchorRestoredExactly(t *testing.T) {
	env := newTxTestEnv()
	user := cashier("ana")
	env.openSessionFor(user.ID)
	anchor := date(2024, time.November, 30)
	client := env.seedClient(anchor, model.ClientActive)

	id := client.ID.String()
	resp, err := env.svc.Create(context.Background(), user, monthlyPayment(id, 3, model.PayCash))
	require.NoError(t, err)

	// February has no 30th: the advance clamps instead of spilling into March.
	assert.Equal(t, date(2025, time.February, 28), client.LastPaidMonth)

	err = env.svc.Cancel(context.Background(), user, uuid.MustParse(resp.TransactionID),
		dto.CancelTransactionRequest{Reason: "pago duplicado"})
	require.NoError(t, err)
	assert.Equal(t, anchor, client.LastPaidMonth)
}
