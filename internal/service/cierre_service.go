package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const cierresRecientes = 30

// GeneradorPDF renders a closing as a printable document.
type GeneradorPDF interface {
	GenerarCierre(c *model.CierreCaja) ([]byte, error)
}

// EncoladorEmail schedules the closing e-mail on the job queue.
type EncoladorEmail interface {
	EncolarEmailCierre(ctx context.Context, job dto.EmailCierreJob) error
}

type CierreService interface {
	// Cerrar records today's closing. Fails with ErrCierreYaExiste or ErrSinVentasHoy.
	Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.CierreResponse, error)
	Listar(ctx context.Context) ([]dto.CierreResponse, error)
	Hoy(ctx context.Context) (*dto.CierreResponse, error)
	PDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type CierreOpciones struct {
	Location         *time.Location
	Reloj            func() time.Time
	MonedaSecundaria string
	ExcluirAnuladas  bool
	EmailDestino     string
}

type cierreService struct {
	repo      repository.CierreRepository
	ventaRepo repository.VentaRepository
	pdf       GeneradorPDF
	email     EncoladorEmail
	opts      CierreOpciones
}

func NewCierreService(
	repo repository.CierreRepository,
	ventaRepo repository.VentaRepository,
	pdf GeneradorPDF,
	email EncoladorEmail,
	opts CierreOpciones,
) CierreService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Reloj == nil {
		opts.Reloj = time.Now
	}
	if opts.MonedaSecundaria == "" {
		opts.MonedaSecundaria = model.MonedaBRL
	}
	return &cierreService{repo: repo, ventaRepo: ventaRepo, pdf: pdf, email: email, opts: opts}
}

func (s *cierreService) dia() (time.Time, time.Time, time.Time) {
	ahora := s.opts.Reloj().In(s.opts.Location)
	inicio := inicioDelDia(ahora, s.opts.Location)
	return ahora, inicio, inicio.AddDate(0, 0, 1)
}

func (s *cierreService) Cerrar(ctx context.Context, req dto.CerrarCajaRequest) (*dto.CierreResponse, error) {
	ahora, inicio, fin := s.dia()

	existe, err := s.repo.ExisteEntre(ctx, inicio, fin)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrCierreYaExiste
	}

	ventas, err := s.ventaRepo.ListEntre(ctx, inicio, fin)
	if err != nil {
		return nil, err
	}
	if s.opts.ExcluirAnuladas {
		activas := ventas[:0]
		for _, v := range ventas {
			if v.Estado != model.VentaAnulada {
				activas = append(activas, v)
			}
		}
		ventas = activas
	}
	if len(ventas) == 0 {
		return nil, ErrSinVentasHoy
	}

	cierre := calcularCierre(ventas, s.opts.MonedaSecundaria)
	cierre.FechaCierre = ahora
	cierre.Dia = inicio
	cierre.Notas = req.Notas

	if err := s.repo.Create(ctx, cierre); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrCierreYaExiste
		}
		return nil, err
	}
	log.Info().Str("cierre_id", cierre.ID.String()).Int("ventas", cierre.CantidadVentas).
		Str("monto_total", cierre.MontoTotal.StringFixed(2)).Msg("cierre de caja registrado")

	destino := s.opts.EmailDestino
	if req.EmailDestino != nil && *req.EmailDestino != "" {
		destino = *req.EmailDestino
	}
	if destino != "" && s.email != nil {
		if err := s.email.EncolarEmailCierre(ctx, dto.EmailCierreJob{CierreID: cierre.ID, Destino: destino}); err != nil {
			log.Warn().Err(err).Str("cierre_id", cierre.ID.String()).Msg("email de cierre no encolado")
		}
	}
	return cierreToResponse(cierre, s.opts.Location), nil
}

// calcularCierre buckets the day's sales. Secondary-currency sales only feed
// TotalBRL; the rest go by payment method, unknown methods count as cash.
func calcularCierre(ventas []model.Venta, monedaSecundaria string) *model.CierreCaja {
	c := &model.CierreCaja{
		TotalEfectivo:      decimal.Zero,
		TotalDebito:        decimal.Zero,
		TotalTransferencia: decimal.Zero,
		TotalBRL:           decimal.Zero,
		MontoTotal:         decimal.Zero,
		CantidadVentas:     len(ventas),
	}
	for _, v := range ventas {
		if v.Moneda == monedaSecundaria {
			c.TotalBRL = c.TotalBRL.Add(v.Total)
			continue
		}
		switch normalizarMetodo(v.MetodoPago) {
		case MetodoDebito:
			c.TotalDebito = c.TotalDebito.Add(v.Total)
		case MetodoTransferencia:
			c.TotalTransferencia = c.TotalTransferencia.Add(v.Total)
		default:
			c.TotalEfectivo = c.TotalEfectivo.Add(v.Total)
		}
		c.MontoTotal = c.MontoTotal.Add(v.Total)
	}
	return c
}

func (s *cierreService) Listar(ctx context.Context) ([]dto.CierreResponse, error) {
	cierres, err := s.repo.ListRecientes(ctx, cierresRecientes)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CierreResponse, 0, len(cierres))
	for i := range cierres {
		out = append(out, *cierreToResponse(&cierres[i], s.opts.Location))
	}
	return out, nil
}

func (s *cierreService) Hoy(ctx context.Context) (*dto.CierreResponse, error) {
	_, inicio, fin := s.dia()
	c, err := s.repo.FindEntre(ctx, inicio, fin)
	if err != nil {
		return nil, mapNoEncontrado(err, "cierre de hoy")
	}
	return cierreToResponse(c, s.opts.Location), nil
}

func (s *cierreService) PDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.pdf == nil {
		return nil, errors.New("generación de PDF no configurada")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "cierre")
	}
	b, err := s.pdf.GenerarCierre(c)
	if err != nil {
		return nil, fmt.Errorf("error generando PDF: %w", err)
	}
	return b, nil
}

func cierreToResponse(c *model.CierreCaja, loc *time.Location) *dto.CierreResponse {
	return &dto.CierreResponse{
		ID:                 c.ID.String(),
		FechaCierre:        c.FechaCierre.In(loc).Format(time.RFC3339),
		Dia:                c.Dia.Format(formatoDia),
		TotalEfectivo:      c.TotalEfectivo,
		TotalDebito:        c.TotalDebito,
		TotalTransferencia: c.TotalTransferencia,
		TotalBRL:           c.TotalBRL,
		CantidadVentas:     c.CantidadVentas,
		MontoTotal:         c.MontoTotal,
		Notas:              c.Notas,
	}
}
