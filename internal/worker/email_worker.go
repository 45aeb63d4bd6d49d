package worker

// email_worker.go: mails the closing PDF queued by CierreService.Cerrar. The
// SMTP call goes through a breaker so a dead relay fails fast and the job is
// retried later or parked in the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kiosco/internal/dto"
	"kiosco/internal/infra"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/rs/zerolog/log"
)

// EnviadorCierre is satisfied by *infra.Mailer.
type EnviadorCierre interface {
	EnviarCierre(to, subject, body, nombreArchivo string, pdf []byte) error
}

type GeneradorCierre interface {
	GenerarCierre(c *model.CierreCaja) ([]byte, error)
}

type EmailWorker struct {
	cierres   repository.CierreRepository
	pdf       GeneradorCierre
	mailer    EnviadorCierre
	disyuntor *infra.Disyuntor
	negocio   string
}

func NewEmailWorker(cierres repository.CierreRepository, pdf GeneradorCierre, mailer EnviadorCierre, d *infra.Disyuntor, negocio string) *EmailWorker {
	if d == nil {
		d = infra.NewDisyuntor(infra.ConfigDisyuntorSMTP())
	}
	return &EmailWorker{cierres: cierres, pdf: pdf, mailer: mailer, disyuntor: d, negocio: negocio}
}

func (w *EmailWorker) Procesar(ctx context.Context, raw json.RawMessage) error {
	var job dto.EmailCierreJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("%w: payload inválido: %v", ErrDescartar, err)
	}
	if job.Destino == "" {
		log.Warn().Str("cierre_id", job.CierreID.String()).Msg("email_worker: sin destinatario")
		return nil
	}

	c, err := w.cierres.FindByID(ctx, job.CierreID)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return fmt.Errorf("%w: cierre %s", ErrDescartar, job.CierreID)
		}
		return err
	}
	pdf, err := w.pdf.GenerarCierre(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDescartar, err)
	}

	dia := c.Dia.Format("2006-01-02")
	asunto := fmt.Sprintf("%s: cierre de caja %s", w.negocio, dia)
	cuerpo := fmt.Sprintf("Cierre del %s\nVentas: %d\nTotal UYU: %s\nTotal BRL: %s\n",
		dia, c.CantidadVentas, c.MontoTotal.StringFixed(2), c.TotalBRL.StringFixed(2))

	err = w.disyuntor.Ejecutar(func() error {
		return w.mailer.EnviarCierre(job.Destino, asunto, cuerpo, "cierre_"+dia+".pdf", pdf)
	})
	if err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Str("cierre_id", job.CierreID.String()).Str("to", job.Destino).Msg("email_worker: cierre enviado")
	return nil
}
