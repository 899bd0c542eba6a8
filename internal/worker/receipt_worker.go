package worker

// receipt_worker.go
// Processes payment-receipt jobs: renders the PDF and emails it to the
// client. SMTP calls run behind the circuit breaker; exhausted retries land
// in the DLQ for manual inspection.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/infra"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxSendAttempts = 3

// ReceiptJobPayload is the job envelope sent to QueueReceipts.
type ReceiptJobPayload struct {
	TransactionID string `json:"transaction_id"`
	Email         string `json:"email"`
}

// ReceiptWorker renders and emails payment receipts.
type ReceiptWorker struct {
	txRepo repository.TransactionRepository
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	cfg    *config.Config
}

func NewReceiptWorker(txRepo repository.TransactionRepository, mailer *infra.Mailer, cb *infra.CircuitBreaker, cfg *config.Config) *ReceiptWorker {
	return &ReceiptWorker{txRepo: txRepo, mailer: mailer, cb: cb, cfg: cfg}
}

// Process renders the PDF and sends it, retrying transient SMTP failures
// with backoff before giving up to the DLQ.
func (w *ReceiptWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	if payload.Email == "" {
		log.Warn().Msg("receipt_worker: empty email — skipping")
		return
	}

	txID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid transaction_id")
		return
	}
	record, err := w.txRepo.FindByID(ctx, txID)
	if err != nil {
		log.Error().Err(err).Str("transaction_id", payload.TransactionID).
			Msg("receipt_worker: transaction not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(record, w.cfg.CompanyName, w.cfg.ReceiptStoragePath)
	if err != nil {
		log.Error().Err(err).Msg("receipt_worker: pdf generation failed")
		SendToDLQ(ctx, rdb, QueueReceipts, "receipt", raw, err.Error(), 0)
		return
	}

	subject := fmt.Sprintf("%s — Recibo de pago", w.cfg.CompanyName)
	body := fmt.Sprintf("Adjuntamos el recibo de su pago por $%s. Gracias.", record.Amount.StringFixed(2))

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		lastErr = w.cb.Execute(func() error {
			return w.mailer.SendReceipt(payload.Email, subject, body, pdfPath)
		})
		if lastErr == nil {
			log.Info().Str("to", payload.Email).Str("transaction_id", payload.TransactionID).
				Msg("receipt_worker: receipt sent")
			return
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("receipt_worker: send failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}

	SendToDLQ(ctx, rdb, QueueReceipts, "receipt", raw, lastErr.Error(), maxSendAttempts)
}
