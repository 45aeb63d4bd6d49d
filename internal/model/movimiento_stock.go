package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de movimiento de stock.
const (
	MovimientoVenta        = "venta"
	MovimientoAnulacion    = "anulacion"
	MovimientoReposicion   = "reposicion"
	MovimientoAjusteManual = "ajuste_manual"
)

// MovimientoStock registra cada cambio de stock en un producto.
// Lo escriben la ruta secuencial de venta/anulación, la reposición y el ajuste manual;
// las funciones atómicas de la base escriben el suyo dentro de la misma transacción.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"`
	Cantidad      int       `gorm:"not null"` // positivo = entrada, negativo = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // venta_id o compra_id
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
