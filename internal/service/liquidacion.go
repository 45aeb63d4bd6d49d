package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"kiosco/internal/config"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// estrategiaLiquidacion persists a settled sale and reverses it. Registrar
// reports previa=true when the idempotency key resolved to a sale that was
// already recorded, in which case nothing was written.
type estrategiaLiquidacion interface {
	Registrar(ctx context.Context, v *model.Venta) (id uuid.UUID, previa bool, err error)
	Anular(ctx context.Context, id uuid.UUID) error
}

// ── Ruta atómica ──────────────────────────────────────────────────────────────

// liquidadorAtomico delegates to create_sale_atomic / cancel_sale_atomic: header,
// items, combos, stock and audit rows commit or roll back together.
type liquidadorAtomico struct {
	ventas repository.VentaRepository
}

func (l *liquidadorAtomico) Registrar(ctx context.Context, v *model.Venta) (uuid.UUID, bool, error) {
	if id, ok := ventaPrevia(ctx, l.ventas, v); ok {
		return id, true, nil
	}
	id, err := l.ventas.CrearAtomica(ctx, v)
	if errors.Is(err, repository.ErrDuplicado) {
		// a concurrent request with the same key committed first
		if id, ok := ventaPrevia(ctx, l.ventas, v); ok {
			return id, true, nil
		}
	}
	return id, false, err
}

// ventaPrevia resolves the sale already recorded under v's idempotency key.
func ventaPrevia(ctx context.Context, ventas repository.VentaRepository, v *model.Venta) (uuid.UUID, bool) {
	if v.ClaveIdempotencia == nil {
		return uuid.Nil, false
	}
	previa, err := ventas.FindByClave(ctx, *v.ClaveIdempotencia)
	if err != nil {
		return uuid.Nil, false
	}
	return previa.ID, true
}

func (l *liquidadorAtomico) Anular(ctx context.Context, id uuid.UUID) error {
	err := l.ventas.AnularAtomica(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNoEncontrado):
		return ErrVentaNoEncontrada
	case errors.Is(err, repository.ErrEstadoInvalido):
		return ErrVentaYaAnulada
	}
	return err
}

// ── Ruta secuencial (respaldo) ────────────────────────────────────────────────

// liquidadorSecuencial runs each write as its own statement. A failure between
// steps can leave a sale without its stock adjustment; the only compensation is
// deleting an orphan header when its items could not be written.
type liquidadorSecuencial struct {
	ventas      repository.VentaRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	modoStock   string
}

func (l *liquidadorSecuencial) Registrar(ctx context.Context, v *model.Venta) (uuid.UUID, bool, error) {
	if id, ok := ventaPrevia(ctx, l.ventas, v); ok {
		return id, true, nil
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	if err := l.ventas.CreateHeader(ctx, v); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			if id, ok := ventaPrevia(ctx, l.ventas, v); ok {
				return id, true, nil
			}
		}
		return uuid.Nil, false, fmt.Errorf("error registrando la venta: %w", err)
	}

	for i := range v.Items {
		v.Items[i].VentaID = v.ID
	}
	for i := range v.Combos {
		v.Combos[i].VentaID = v.ID
	}
	if err := l.ventas.CreateItems(ctx, v.Items); err != nil {
		l.compensar(ctx, v.ID, err)
		return uuid.Nil, false, fmt.Errorf("error registrando los productos de la venta: %w", err)
	}
	if err := l.ventas.CreateCombos(ctx, v.Combos); err != nil {
		l.compensar(ctx, v.ID, err)
		return uuid.Nil, false, fmt.Errorf("error registrando los combos de la venta: %w", err)
	}

	// a product repeated across items continues from the stock the previous
	// item left, otherwise the snapshot writes would overwrite each other
	restante := make(map[uuid.UUID]int, len(v.Items))
	var fallidos []uuid.UUID
	for _, it := range v.Items {
		if r, ok := restante[it.ProductoID]; ok {
			it.StockCapturado = min(it.StockCapturado, r)
		}
		restante[it.ProductoID] = max(0, it.StockCapturado-it.Cantidad)
		if err := l.descontar(ctx, v.ID, it); err != nil {
			log.Error().Err(err).Str("venta_id", v.ID.String()).Str("producto_id", it.ProductoID.String()).
				Msg("liquidacion: stock sin actualizar")
			fallidos = append(fallidos, it.ProductoID)
		}
	}
	if len(fallidos) > 0 {
		return v.ID, false, fmt.Errorf("%w: venta %s, productos %v", ErrLiquidacionParcial, v.ID, fallidos)
	}
	return v.ID, false, nil
}

// descontar writes the decremented stock of one item and its audit row.
func (l *liquidadorSecuencial) descontar(ctx context.Context, ventaID uuid.UUID, it model.VentaItem) error {
	anterior := it.StockCapturado
	nuevo := max(0, it.StockCapturado-it.Cantidad)

	if l.modoStock == config.StockRespaldoRelativo {
		if err := l.productos.AjustarStockMinCero(ctx, it.ProductoID, -it.Cantidad); err != nil {
			return err
		}
		if p, err := l.productos.FindByID(ctx, it.ProductoID); err == nil {
			nuevo = p.Stock
			anterior = p.Stock + it.Cantidad
		}
	} else if err := l.productos.SetStock(ctx, it.ProductoID, nuevo); err != nil {
		return err
	}

	l.auditar(ctx, &model.MovimientoStock{
		ProductoID:    it.ProductoID,
		Tipo:          model.MovimientoVenta,
		Cantidad:      -it.Cantidad,
		StockAnterior: anterior,
		StockNuevo:    nuevo,
		Motivo:        "Venta",
		ReferenciaID:  &ventaID,
	})
	return nil
}

func (l *liquidadorSecuencial) compensar(ctx context.Context, ventaID uuid.UUID, causa error) {
	// the caller's deadline may be what failed the insert
	if err := l.ventas.DeleteHeader(context.WithoutCancel(ctx), ventaID); err != nil {
		log.Error().Err(err).AnErr("causa", causa).Str("venta_id", ventaID.String()).
			Msg("liquidacion: no se pudo eliminar la venta huérfana")
		return
	}
	log.Warn().AnErr("causa", causa).Str("venta_id", ventaID.String()).
		Msg("liquidacion: venta huérfana eliminada")
}

func (l *liquidadorSecuencial) Anular(ctx context.Context, id uuid.UUID) error {
	v, err := l.ventas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrVentaNoEncontrada
		}
		return err
	}
	if v.Estado == model.VentaAnulada {
		return ErrVentaYaAnulada
	}

	items, err := l.ventas.ListItems(ctx, id)
	if err != nil {
		return err
	}

	ok, err := l.ventas.UpdateEstado(ctx, id, model.VentaActiva, model.VentaAnulada)
	if err != nil {
		return err
	}
	if !ok {
		// a concurrent cancellation won
		return ErrVentaYaAnulada
	}

	var fallidos []uuid.UUID
	for _, it := range items {
		if err := l.productos.AjustarStock(ctx, it.ProductoID, it.Cantidad); err != nil {
			log.Error().Err(err).Str("venta_id", id.String()).Str("producto_id", it.ProductoID.String()).
				Msg("anulacion: stock sin restaurar")
			fallidos = append(fallidos, it.ProductoID)
			continue
		}
		mov := &model.MovimientoStock{
			ProductoID:   it.ProductoID,
			Tipo:         model.MovimientoAnulacion,
			Cantidad:     it.Cantidad,
			Motivo:       "Anulación de venta",
			ReferenciaID: &id,
		}
		if p, err := l.productos.FindByID(ctx, it.ProductoID); err == nil {
			mov.StockNuevo = p.Stock
			mov.StockAnterior = p.Stock - it.Cantidad
		}
		l.auditar(ctx, mov)
	}
	if len(fallidos) > 0 {
		return fmt.Errorf("venta %s anulada pero sin restaurar stock de %v", id, fallidos)
	}
	return nil
}

func (l *liquidadorSecuencial) auditar(ctx context.Context, m *model.MovimientoStock) {
	if l.movimientos == nil {
		return
	}
	if err := l.movimientos.Create(ctx, m); err != nil {
		log.Warn().Err(err).Str("producto_id", m.ProductoID.String()).Msg("movimiento de stock no registrado")
	}
}

// ── Selección por capacidad ───────────────────────────────────────────────────

// liquidadorConRespaldo prefers the atomic strategy and switches to the
// sequential one, for the life of the process, once the database reports that
// the procedures are missing. The first call also probes the catalog.
type liquidadorConRespaldo struct {
	atomico    estrategiaLiquidacion
	secuencial estrategiaLiquidacion
	probar     func(ctx context.Context) (bool, error)

	sondeo sync.Once
	sinRPC atomic.Bool
}

func (l *liquidadorConRespaldo) usarAtomico(ctx context.Context) bool {
	l.sondeo.Do(func() {
		if l.probar == nil {
			return
		}
		ok, err := l.probar(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("liquidacion: no se pudo sondear procedimientos atómicos")
			return
		}
		if !ok {
			l.marcarSinRPC(nil)
		}
	})
	return !l.sinRPC.Load()
}

func (l *liquidadorConRespaldo) marcarSinRPC(causa error) {
	if l.sinRPC.CompareAndSwap(false, true) {
		log.Warn().AnErr("causa", causa).Msg("liquidacion: procedimientos atómicos no disponibles, usando ruta secuencial")
	}
}

func (l *liquidadorConRespaldo) Registrar(ctx context.Context, v *model.Venta) (uuid.UUID, bool, error) {
	if l.usarAtomico(ctx) {
		id, previa, err := l.atomico.Registrar(ctx, v)
		if !errors.Is(err, repository.ErrRPCNoDisponible) {
			return id, previa, err
		}
		l.marcarSinRPC(err)
	}
	return l.secuencial.Registrar(ctx, v)
}

func (l *liquidadorConRespaldo) Anular(ctx context.Context, id uuid.UUID) error {
	if l.usarAtomico(ctx) {
		err := l.atomico.Anular(ctx, id)
		if !errors.Is(err, repository.ErrRPCNoDisponible) {
			return err
		}
		l.marcarSinRPC(err)
	}
	return l.secuencial.Anular(ctx, id)
}

func nuevoLiquidador(
	ventas repository.VentaRepository,
	productos repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	modoStock string,
) estrategiaLiquidacion {
	return &liquidadorConRespaldo{
		atomico: &liquidadorAtomico{ventas: ventas},
		secuencial: &liquidadorSecuencial{
			ventas:      ventas,
			productos:   productos,
			movimientos: movimientos,
			modoStock:   modoStock,
		},
		probar: ventas.SoportaRPC,
	}
}
