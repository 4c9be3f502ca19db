package worker

// export_worker.go
// Processes arqueo export jobs from QueueArqueoExport.
// Writes the XLSX and PDF receipts to disk and, when an owner address is
// configured, enqueues an email with both files attached.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"arelyz/internal/calculo"
	"arelyz/internal/export"
	"arelyz/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExportJobPayload is the job envelope sent to QueueArqueoExport.
type ExportJobPayload struct {
	ArqueoID string `json:"arqueo_id"`
}

// EmailEnqueuer is the subset of Dispatcher the export worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ExportWorkerConfig struct {
	StoragePath string
	Negocio     string
	OwnerEmail  string
	Location    *time.Location
}

type ExportWorker struct {
	arqueos repository.ArqueoRepository
	emails  EmailEnqueuer
	cfg     ExportWorkerConfig
}

func NewExportWorker(arqueos repository.ArqueoRepository, emails EmailEnqueuer, cfg ExportWorkerConfig) *ExportWorker {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ExportWorker{arqueos: arqueos, emails: emails, cfg: cfg}
}

// Process renders both formats of one arqueo. Export failures never touch
// the committed record.
func (w *ExportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ExportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("export_worker: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.ArqueoID)
	if err != nil {
		return fmt.Errorf("export_worker: invalid arqueo_id %q: %w", payload.ArqueoID, err)
	}

	a, err := w.arqueos.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("export_worker: arqueo %s: %w", id, err)
	}

	if err := os.MkdirAll(w.cfg.StoragePath, 0755); err != nil {
		return fmt.Errorf("export_worker: create storage dir: %w", err)
	}
	base := filepath.Join(w.cfg.StoragePath, export.NombreArchivo(a, w.cfg.Location))

	xlsx, err := export.XLSX(a, w.cfg.Negocio, w.cfg.Location)
	if err != nil {
		return err
	}
	pdf, err := export.PDF(a, w.cfg.Negocio, w.cfg.Location)
	if err != nil {
		return err
	}
	paths := []string{base + ".xlsx", base + ".pdf"}
	for i, content := range [][]byte{xlsx, pdf} {
		if err := os.WriteFile(paths[i], content, 0644); err != nil {
			return fmt.Errorf("export_worker: write %s: %w", paths[i], err)
		}
	}
	log.Info().Str("arqueo_id", id.String()).Strs("files", paths).Msg("export_worker: receipts written")

	if w.cfg.OwnerEmail == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: w.cfg.OwnerEmail,
		Subject: fmt.Sprintf("%s - Arqueo %s", w.cfg.Negocio, a.CreatedAt.In(w.cfg.Location).Format("02/01/2006 15:04")),
		Body: fmt.Sprintf("Operador: %s\nEfectivo neto: %s\nEfectivo contado: %s\nDiferencia: %s (%s)\n",
			a.Operador, calculo.Moneda(a.EfectivoNeto), calculo.Moneda(a.EfectivoContado),
			calculo.Moneda(a.Diferencia), calculo.Etiqueta(a.Diferencia)),
		Attachments: paths,
	}
	// The files exist already; a failed enqueue is logged, not retried.
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("arqueo_id", id.String()).Msg("export_worker: failed to enqueue email")
	}
	return nil
}
