package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Sends arqueo receipts to the salon owner via SMTP, guarded by a circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"arelyz/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail     string   `json:"to_email"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

// Sender delivers one message. *infra.Mailer implements it.
type Sender interface {
	Send(to, subject, body string, attachments ...string) error
}

type EmailWorker struct {
	mailer Sender
	cb     *infra.CircuitBreaker
}

// NewEmailWorker creates an EmailWorker. A nil breaker gets the defaults.
func NewEmailWorker(mailer Sender, cb *infra.CircuitBreaker) *EmailWorker {
	if cb == nil {
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	return &EmailWorker{mailer: mailer, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.Attachments...)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Int("attachments", len(payload.Attachments)).Msg("email_worker: arqueo receipt sent")
	return nil
}
