package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	// AjustarStock sets an absolute stock value and records the difference.
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	Alertas(ctx context.Context) ([]dto.ProductoResponse, error)
	// Movimientos returns the stock audit trail of a product, newest first.
	Movimientos(ctx context.Context, id uuid.UUID, q dto.MovimientosQuery) (*dto.MovimientoListResponse, error)
}

type productoService struct {
	repo    repository.ProductoRepository
	movRepo repository.MovimientoStockRepository
	loc     *time.Location
}

func NewProductoService(repo repository.ProductoRepository, movRepo repository.MovimientoStockRepository, loc *time.Location) ProductoService {
	if loc == nil {
		loc = time.Local
	}
	return &productoService{repo: repo, movRepo: movRepo, loc: loc}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.Precio.IsNegative() || req.Costo.IsNegative() {
		return nil, fmt.Errorf("%w: precio y costo no pueden ser negativos", ErrValidacion)
	}
	p := &model.Producto{
		Nombre:      strings.TrimSpace(req.Nombre),
		Categoria:   req.Categoria,
		Precio:      req.Precio,
		Costo:       req.Costo,
		Stock:       req.Stock,
		StockMinimo: req.StockMinimo,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) buscar(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, fmt.Errorf("%w: producto %s", ErrNoEncontrado, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Actualizar never touches stock; stock changes go through AjustarStock or the engines.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Categoria != nil {
		p.Categoria = req.Categoria
	}
	if req.Precio != nil {
		if req.Precio.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", ErrValidacion)
		}
		p.Precio = *req.Precio
	}
	if req.Costo != nil {
		if req.Costo.IsNegative() {
			return nil, fmt.Errorf("%w: costo negativo", ErrValidacion)
		}
		p.Costo = *req.Costo
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return mapNoEncontrado(s.repo.SoftDelete(ctx, id), "producto")
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return mapNoEncontrado(s.repo.Reactivar(ctx, id), "producto")
}

func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: el stock no puede ser negativo", ErrValidacion)
	}
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	anterior := p.Stock
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SetStockTx(tx, id, req.Stock); err != nil {
			return err
		}
		return s.movRepo.CreateTx(tx, &model.MovimientoStock{
			ProductoID:    id,
			Tipo:          model.MovimientoAjusteManual,
			Cantidad:      req.Stock - anterior,
			StockAnterior: anterior,
			StockNuevo:    req.Stock,
			Motivo:        req.Motivo,
		})
	})
	if err != nil {
		return nil, err
	}
	p.Stock = req.Stock
	return productoToResponse(p), nil
}

func (s *productoService) Alertas(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListBajoStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

func (s *productoService) Movimientos(ctx context.Context, id uuid.UUID, q dto.MovimientosQuery) (*dto.MovimientoListResponse, error) {
	if _, err := s.buscar(ctx, id); err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 500 {
		q.Limit = 50
	}
	f := repository.MovimientoStockFiltro{ProductoID: &id, Tipo: q.Tipo, Page: q.Page, Limit: q.Limit}
	if q.Desde != "" || q.Hasta != "" {
		desde, hasta, err := rangoDias(q.Desde, q.Hasta, time.Now(), s.loc)
		if err != nil {
			return nil, err
		}
		f.Desde, f.Hasta = &desde, &hasta
	}

	movs, total, err := s.movRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		r := dto.MovimientoResponse{
			ID:            m.ID.String(),
			Fecha:         m.CreatedAt.In(s.loc).Format(time.RFC3339),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
		}
		if m.ReferenciaID != nil {
			ref := m.ReferenciaID.String()
			r.ReferenciaID = &ref
		}
		data = append(data, r)
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func mapNoEncontrado(err error, que string) error {
	if errors.Is(err, repository.ErrNoEncontrado) {
		return fmt.Errorf("%w: %s", ErrNoEncontrado, que)
	}
	return err
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Categoria:   p.Categoria,
		Precio:      p.Precio,
		Costo:       p.Costo,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		Activo:      p.Activo,
		BajoStock:   p.BajoStock(),
	}
}
