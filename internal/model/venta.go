package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	VentaActiva  = "activa"
	VentaAnulada = "anulada"
)

// Monedas aceptadas.
const (
	MonedaUYU = "UYU"
	MonedaBRL = "BRL"
)

// Venta is a recorded sale. Estado moves activa → anulada exactly once.
type Venta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha      time.Time       `gorm:"not null;index;default:now()"`
	MetodoPago string          `gorm:"type:varchar(30);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Moneda     string          `gorm:"type:varchar(3);not null;default:'UYU'"`
	Estado     string          `gorm:"type:varchar(10);not null;default:'activa'"`
	Nota       *string
	// ClaveIdempotencia lets a client retry a settlement after an uncertain outcome.
	ClaveIdempotencia *string `gorm:"type:varchar(64);uniqueIndex"`

	Items  []VentaItem  `gorm:"foreignKey:VentaID"`
	Combos []VentaCombo `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "sales" }

// VentaItem is one line of a sale. Lines expanded from a combo carry ComboID and
// PrecioUnitario zero; the combo revenue lives in VentaCombo.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Recargo        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ComboID        *uuid.UUID      `gorm:"type:uuid"`

	// StockCapturado is the product stock observed when the line was added to the cart.
	// Only the snapshot fallback path reads it.
	StockCapturado int `gorm:"-" json:"-"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "sale_items" }

// VentaCombo summarises a combo sold within a sale.
type VentaCombo struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ComboID        uuid.UUID       `gorm:"type:uuid;not null"`
	Nombre         string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (VentaCombo) TableName() string { return "sale_combos" }
