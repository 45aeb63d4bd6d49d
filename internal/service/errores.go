package service

import (
	"context"
	"errors"

	"kiosco/internal/carrito"

	"gorm.io/gorm"
)

var (
	ErrValidacion        = errors.New("datos inválidos")
	ErrNoEncontrado      = errors.New("no encontrado")
	ErrVentaNoEncontrada = errors.New("venta no encontrada")
	ErrVentaYaAnulada    = errors.New("la venta ya está anulada")
	ErrCierreYaExiste    = errors.New("Ya existe un cierre de caja para el día de hoy")
	ErrSinVentasHoy      = errors.New("No hay ventas registradas hoy para cerrar la caja")
	// ErrResultadoIncierto: the deadline expired while the database may have
	// applied the write. Callers must check before retrying.
	ErrResultadoIncierto = errors.New("resultado incierto: la operación excedió el tiempo límite")
	// ErrLiquidacionParcial: the sale was recorded but some stock writes failed.
	ErrLiquidacionParcial = errors.New("venta registrada con stock sin actualizar")
	ErrTasaNoConfigurada  = errors.New("tasa de cambio no configurada")

	ErrStockInsuficienteCombo = carrito.ErrStockInsuficienteCombo
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
