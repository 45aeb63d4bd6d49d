package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FuenteReposicion is a place where a product can be bought.
type FuenteReposicion struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID   uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Lugar        string           `gorm:"not null"`
	PrecioCompra *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Moneda       string           `gorm:"type:varchar(3);not null;default:'UYU'"`
	Presentacion *string
	Contacto     *string
	URL          *string `gorm:"column:url"`
	Notas        *string
	CreatedAt    time.Time
}

func (FuenteReposicion) TableName() string { return "restock_sources" }

// CompraReposicion is a recorded purchase that increased stock.
type CompraReposicion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha          time.Time       `gorm:"not null;default:now()"`
	ProductoID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	FuenteID       *uuid.UUID      `gorm:"column:source_id;type:uuid"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Moneda         string          `gorm:"type:varchar(3);not null;default:'UYU'"`
	CostoTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notas          *string
}

func (CompraReposicion) TableName() string { return "restock_purchases" }
