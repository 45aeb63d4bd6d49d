package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Categorías de producto. Vasos habilita el recargo Monster en el carrito.
const (
	CategoriaBebidas  = "Bebidas"
	CategoriaAlimento = "Alimento"
	CategoriaVasos    = "Vasos"
	CategoriaOtros    = "Otros"
)

// Producto is a sellable catalog item. Stock is the authoritative on-hand count
// and is only mutated by the settlement, cancellation and restock engines or by
// an audited manual adjustment.
type Producto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string          `gorm:"index;not null"`
	Categoria   *string         `gorm:"type:varchar(20)"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:0"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Producto) TableName() string { return "products" }

// BajoStock reports whether the product should appear in restock alerts.
func (p Producto) BajoStock() bool { return p.Activo && p.Stock <= p.StockMinimo }

// EsVaso reports whether the Monster add-on applies to this product.
func (p Producto) EsVaso() bool { return p.Categoria != nil && *p.Categoria == CategoriaVasos }
