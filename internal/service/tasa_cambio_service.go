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

	"github.com/shopspring/decimal"
)

type TasaCambioService interface {
	Obtener(ctx context.Context) (*dto.TasaCambioResponse, error)
	Actualizar(ctx context.Context, req dto.TasaCambioRequest) (*dto.TasaCambioResponse, error)
	// Convertir expresses monto (in desde) in hasta using the stored rate.
	Convertir(ctx context.Context, monto decimal.Decimal, desde, hasta string) (decimal.Decimal, error)
}

type tasaCambioService struct {
	repo       repository.TasaCambioRepository
	principal  string
	secundaria string
}

// NewTasaCambioService manages the secundaria → principal rate (BRL → UYU).
func NewTasaCambioService(repo repository.TasaCambioRepository, principal, secundaria string) TasaCambioService {
	return &tasaCambioService{repo: repo, principal: principal, secundaria: secundaria}
}

func (s *tasaCambioService) tasa(ctx context.Context) (*model.TasaCambio, error) {
	t, err := s.repo.Get(ctx, s.secundaria, s.principal)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrTasaNoConfigurada
		}
		return nil, err
	}
	return t, nil
}

func (s *tasaCambioService) Obtener(ctx context.Context) (*dto.TasaCambioResponse, error) {
	t, err := s.tasa(ctx)
	if err != nil {
		return nil, err
	}
	return tasaToResponse(t), nil
}

func (s *tasaCambioService) Actualizar(ctx context.Context, req dto.TasaCambioRequest) (*dto.TasaCambioResponse, error) {
	if !req.Tasa.IsPositive() {
		return nil, fmt.Errorf("%w: la tasa debe ser mayor a cero", ErrValidacion)
	}
	t := &model.TasaCambio{
		MonedaDesde: s.secundaria,
		MonedaHasta: s.principal,
		Tasa:        req.Tasa,
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	return tasaToResponse(t), nil
}

func (s *tasaCambioService) Convertir(ctx context.Context, monto decimal.Decimal, desde, hasta string) (decimal.Decimal, error) {
	desde, hasta = strings.ToUpper(desde), strings.ToUpper(hasta)
	if desde == hasta {
		return monto, nil
	}
	t, err := s.tasa(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	switch {
	case desde == s.secundaria && hasta == s.principal:
		return monto.Mul(t.Tasa).Round(2), nil
	case desde == s.principal && hasta == s.secundaria:
		return monto.Div(t.Tasa).Round(2), nil
	}
	return decimal.Zero, fmt.Errorf("%w: conversión %s→%s no soportada", ErrValidacion, desde, hasta)
}

func tasaToResponse(t *model.TasaCambio) *dto.TasaCambioResponse {
	return &dto.TasaCambioResponse{
		Desde:     t.MonedaDesde,
		Hasta:     t.MonedaHasta,
		Tasa:      t.Tasa,
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}
