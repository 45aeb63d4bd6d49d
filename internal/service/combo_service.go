package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComboService interface {
	Crear(ctx context.Context, req dto.CrearComboRequest) (*dto.ComboResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ComboResponse, error)
	Listar(ctx context.Context, incluirInactivos bool) ([]dto.ComboResponse, error)
	// Actualizar rewrites the header and replaces every component in one transaction.
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarComboRequest) (*dto.ComboResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type comboService struct {
	repo         repository.ComboRepository
	productoRepo repository.ProductoRepository
}

func NewComboService(repo repository.ComboRepository, productoRepo repository.ProductoRepository) ComboService {
	return &comboService{repo: repo, productoRepo: productoRepo}
}

// componentes validates the requested items and resolves their products.
func (s *comboService) componentes(ctx context.Context, req []dto.ComboItemRequest) ([]model.ComboItem, error) {
	if len(req) == 0 {
		return nil, fmt.Errorf("%w: el combo debe tener al menos un producto", ErrValidacion)
	}
	items := make([]model.ComboItem, 0, len(req))
	ids := make([]uuid.UUID, 0, len(req))
	vistos := make(map[uuid.UUID]bool, len(req))
	for _, it := range req {
		id, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id inválido", ErrValidacion)
		}
		if it.Cantidad < 1 {
			return nil, fmt.Errorf("%w: cantidad debe ser al menos 1", ErrValidacion)
		}
		if vistos[id] {
			return nil, fmt.Errorf("%w: producto repetido en el combo", ErrValidacion)
		}
		vistos[id] = true
		ids = append(ids, id)
		items = append(items, model.ComboItem{ProductoID: id, Cantidad: it.Cantidad})
	}

	productos, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	existentes := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		existentes[productos[i].ID] = &productos[i]
	}
	for i := range items {
		p, ok := existentes[items[i].ProductoID]
		if !ok {
			return nil, fmt.Errorf("%w: producto %s", ErrNoEncontrado, items[i].ProductoID)
		}
		items[i].Producto = p
	}
	return items, nil
}

func (s *comboService) Crear(ctx context.Context, req dto.CrearComboRequest) (*dto.ComboResponse, error) {
	if req.Precio.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", ErrValidacion)
	}
	items, err := s.componentes(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	combo := &model.Combo{
		Nombre: strings.TrimSpace(req.Nombre),
		Precio: req.Precio,
		Activo: true,
		Items:  items,
	}
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(tx, combo)
	}); err != nil {
		return nil, err
	}
	return comboToResponse(combo), nil
}

func (s *comboService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ComboResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "combo")
	}
	return comboToResponse(c), nil
}

func (s *comboService) Listar(ctx context.Context, incluirInactivos bool) ([]dto.ComboResponse, error) {
	combos, err := s.repo.List(ctx, !incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ComboResponse, 0, len(combos))
	for i := range combos {
		out = append(out, *comboToResponse(&combos[i]))
	}
	return out, nil
}

func (s *comboService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarComboRequest) (*dto.ComboResponse, error) {
	if req.Precio.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", ErrValidacion)
	}
	actual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "combo")
	}
	items, err := s.componentes(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	actual.Nombre = strings.TrimSpace(req.Nombre)
	actual.Precio = req.Precio
	if req.Activo != nil {
		actual.Activo = *req.Activo
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateHeaderTx(tx, actual); err != nil {
			return err
		}
		return s.repo.ReplaceItemsTx(tx, id, items)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, mapNoEncontrado(err, "combo")
		}
		return nil, err
	}
	actual.Items = items
	return comboToResponse(actual), nil
}

func (s *comboService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return mapNoEncontrado(s.repo.SoftDelete(ctx, id), "combo")
}

func comboToResponse(c *model.Combo) *dto.ComboResponse {
	resp := &dto.ComboResponse{
		ID:            c.ID.String(),
		Nombre:        c.Nombre,
		Precio:        c.Precio,
		CostoUnitario: c.CostoUnitario(),
		Activo:        c.Activo,
		Items:         make([]dto.ComboItemResponse, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		item := dto.ComboItemResponse{ProductoID: it.ProductoID.String(), Cantidad: it.Cantidad}
		if it.Producto != nil {
			item.Nombre = it.Producto.Nombre
			item.Precio = it.Producto.Precio
			item.Stock = it.Producto.Stock
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
