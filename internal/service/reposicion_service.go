package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ReposicionService interface {
	CrearFuente(ctx context.Context, req dto.CrearFuenteRequest) (*dto.FuenteResponse, error)
	ListarFuentes(ctx context.Context, productoID *uuid.UUID) ([]dto.FuenteResponse, error)
	EliminarFuente(ctx context.Context, id uuid.UUID) error
	// RegistrarCompra records a purchase and increments the product stock.
	RegistrarCompra(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error)
}

type reposicionService struct {
	repo         repository.ReposicionRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	moneda       string
	sinRPC       atomic.Bool
}

func NewReposicionService(
	repo repository.ReposicionRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	monedaPrincipal string,
) ReposicionService {
	return &reposicionService{repo: repo, productoRepo: productoRepo, movRepo: movRepo, moneda: monedaPrincipal}
}

func (s *reposicionService) monedaO(m string) string {
	if m == "" {
		return s.moneda
	}
	return strings.ToUpper(m)
}

func (s *reposicionService) CrearFuente(ctx context.Context, req dto.CrearFuenteRequest) (*dto.FuenteResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id inválido", ErrValidacion)
	}
	if _, err := s.productoRepo.FindByID(ctx, pid); err != nil {
		return nil, mapNoEncontrado(err, "producto")
	}
	f := &model.FuenteReposicion{
		ProductoID:   pid,
		Lugar:        strings.TrimSpace(req.Lugar),
		PrecioCompra: req.PrecioCompra,
		Moneda:       s.monedaO(req.Moneda),
		Presentacion: req.Presentacion,
		Contacto:     req.Contacto,
		URL:          req.URL,
		Notas:        req.Notas,
	}
	if err := s.repo.CreateFuente(ctx, f); err != nil {
		return nil, err
	}
	return fuenteToResponse(f), nil
}

func (s *reposicionService) ListarFuentes(ctx context.Context, productoID *uuid.UUID) ([]dto.FuenteResponse, error) {
	fuentes, err := s.repo.ListFuentes(ctx, productoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FuenteResponse, 0, len(fuentes))
	for i := range fuentes {
		out = append(out, *fuenteToResponse(&fuentes[i]))
	}
	return out, nil
}

func (s *reposicionService) EliminarFuente(ctx context.Context, id uuid.UUID) error {
	return mapNoEncontrado(s.repo.DeleteFuente(ctx, id), "fuente")
}

func (s *reposicionService) RegistrarCompra(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id inválido", ErrValidacion)
	}
	if req.Cantidad < 1 {
		return nil, fmt.Errorf("%w: cantidad debe ser al menos 1", ErrValidacion)
	}
	if req.PrecioUnitario.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", ErrValidacion)
	}
	if _, err := s.productoRepo.FindByID(ctx, pid); err != nil {
		return nil, mapNoEncontrado(err, "producto")
	}

	compra := &model.CompraReposicion{
		Fecha:          time.Now(),
		ProductoID:     pid,
		Cantidad:       req.Cantidad,
		PrecioUnitario: req.PrecioUnitario,
		Moneda:         s.monedaO(req.Moneda),
		CostoTotal:     req.PrecioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))),
		Notas:          req.Notas,
	}
	if req.FuenteID != nil {
		fid, err := uuid.Parse(*req.FuenteID)
		if err != nil {
			return nil, fmt.Errorf("%w: fuente_id inválido", ErrValidacion)
		}
		compra.FuenteID = &fid
	}
	if err := s.repo.CreateCompra(ctx, compra); err != nil {
		return nil, err
	}

	nuevo, err := s.incrementar(ctx, pid, req.Cantidad)
	if err != nil {
		return nil, fmt.Errorf("compra registrada pero el stock no se actualizó: %w", err)
	}
	compraID := compra.ID
	if err := s.movRepo.Create(ctx, &model.MovimientoStock{
		ProductoID:    pid,
		Tipo:          model.MovimientoReposicion,
		Cantidad:      req.Cantidad,
		StockAnterior: nuevo - req.Cantidad,
		StockNuevo:    nuevo,
		Motivo:        "Compra de reposición",
		ReferenciaID:  &compraID,
	}); err != nil {
		log.Warn().Err(err).Str("producto_id", pid.String()).Msg("movimiento de reposición no registrado")
	}

	return &dto.CompraResponse{
		ID:             compra.ID.String(),
		Fecha:          compra.Fecha.Format(time.RFC3339),
		ProductoID:     pid.String(),
		Cantidad:       compra.Cantidad,
		PrecioUnitario: compra.PrecioUnitario,
		Moneda:         compra.Moneda,
		CostoTotal:     compra.CostoTotal,
		StockNuevo:     nuevo,
	}, nil
}

// incrementar prefers increment_stock; without it, reads then writes the stock.
func (s *reposicionService) incrementar(ctx context.Context, pid uuid.UUID, cantidad int) (int, error) {
	if !s.sinRPC.Load() {
		nuevo, err := s.repo.IncrementarStockRPC(ctx, pid, cantidad)
		if !errors.Is(err, repository.ErrRPCNoDisponible) {
			return nuevo, err
		}
		s.sinRPC.Store(true)
		log.Warn().Err(err).Msg("reposicion: increment_stock no disponible, usando lectura y escritura")
	}
	p, err := s.productoRepo.FindByID(ctx, pid)
	if err != nil {
		return 0, err
	}
	nuevo := p.Stock + cantidad
	if err := s.productoRepo.SetStock(ctx, pid, nuevo); err != nil {
		return 0, err
	}
	return nuevo, nil
}

func fuenteToResponse(f *model.FuenteReposicion) *dto.FuenteResponse {
	return &dto.FuenteResponse{
		ID:           f.ID.String(),
		ProductoID:   f.ProductoID.String(),
		Lugar:        f.Lugar,
		PrecioCompra: f.PrecioCompra,
		Moneda:       f.Moneda,
		Presentacion: f.Presentacion,
		Contacto:     f.Contacto,
		URL:          f.URL,
		Notas:        f.Notas,
	}
}
