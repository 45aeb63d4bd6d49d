package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Combo is a named bundle sold at a single price.
type Combo struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string          `gorm:"not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []ComboItem `gorm:"foreignKey:ComboID"`
}

func (Combo) TableName() string { return "combos" }

// ComboItem is one component of a combo: Cantidad units of ProductoID per combo sold.
type ComboItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComboID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Cantidad   int       `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ComboItem) TableName() string { return "combo_items" }

// CostoUnitario sums component cost × quantity. Components must be preloaded.
func (c Combo) CostoUnitario() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		if it.Producto != nil {
			total = total.Add(it.Producto.Costo.Mul(decimal.NewFromInt(int64(it.Cantidad))))
		}
	}
	return total
}
