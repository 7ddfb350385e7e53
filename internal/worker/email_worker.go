package worker

// email_worker.go
// Processes receipt e-mail jobs from QueueReceiptEmail: renders the receipt
// projection as plain text and sends it via SMTP. Transient send failures
// are retried with backoff; jobs that exhaust the budget go to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/dto"

	"github.com/rs/zerolog/log"
)

// Send attempts per receipt before the job is parked in the DLQ.
// Backoff schedule: immediate, 1s, 2s.
const maxEmailAttempts = 3

// ReceiptEmailPayload is the job envelope sent to QueueReceiptEmail.
type ReceiptEmailPayload struct {
	ToEmail string       `json:"to_email"`
	Receipt *dto.Receipt `json:"receipt"`
}

// ReceiptSender delivers a rendered receipt. Satisfied by *infra.Mailer.
type ReceiptSender interface {
	SendReceipt(to, subject, body string) error
}

type EmailWorker struct {
	sender  ReceiptSender
	backoff time.Duration
}

func NewEmailWorker(sender ReceiptSender) *EmailWorker {
	return &EmailWorker{sender: sender, backoff: time.Second}
}

// Process renders and sends one receipt. A non-nil return means the job
// exhausted its retries (or the payload is unusable) and should be parked.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if payload.ToEmail == "" || payload.Receipt == nil {
		return fmt.Errorf("payload missing recipient or receipt")
	}

	subject := fmt.Sprintf("Receipt %s", payload.Receipt.SaleCode)
	body := renderReceipt(payload.Receipt)

	err := withRetry(ctx, maxEmailAttempts, w.backoff, func(attempt int) error {
		if err := w.sender.SendReceipt(payload.ToEmail, subject, body); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("to", payload.ToEmail).
				Msg("email_worker: send failed, retrying")
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("send receipt to %s: %w", payload.ToEmail, err)
	}

	log.Info().Str("to", payload.ToEmail).Str("sale_code", payload.Receipt.SaleCode).Msg("email_worker: receipt sent")
	return nil
}

func renderReceipt(r *dto.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sale %s\n", r.SaleCode)
	fmt.Fprintf(&b, "Operator: %s\n", r.OperatorName)
	fmt.Fprintf(&b, "Issued: %s\n\n", r.IssuedAt)
	for _, line := range r.Items {
		fmt.Fprintf(&b, "%-30s %3d x %10s = %10s\n", line.ProductName, line.Quantity, line.UnitPrice.StringFixed(2), line.Total.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", r.Total.StringFixed(2))
	fmt.Fprintf(&b, "Payment: %s\n", r.Payment.Method)
	if r.Payment.CashReceived != nil {
		fmt.Fprintf(&b, "Received: %s\n", r.Payment.CashReceived.StringFixed(2))
	}
	if r.Payment.Change != nil {
		fmt.Fprintf(&b, "Change: %s\n", r.Payment.Change.StringFixed(2))
	}
	if r.Payment.Installments != nil {
		fmt.Fprintf(&b, "Installments: %d\n", *r.Payment.Installments)
	}
	return b.String()
}
