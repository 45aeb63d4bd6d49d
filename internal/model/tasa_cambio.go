package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TasaCambio stores how many units of MonedaHasta one unit of MonedaDesde buys.
type TasaCambio struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MonedaDesde string          `gorm:"column:currency_from;type:varchar(3);not null;uniqueIndex:idx_par_monedas"`
	MonedaHasta string          `gorm:"column:currency_to;type:varchar(3);not null;uniqueIndex:idx_par_monedas"`
	Tasa        decimal.Decimal `gorm:"column:rate;type:decimal(12,4);not null"`
	UpdatedAt   time.Time
}

func (TasaCambio) TableName() string { return "exchange_rate_config" }
