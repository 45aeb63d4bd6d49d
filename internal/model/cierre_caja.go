package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CierreCaja is the end-of-day cash-register summary. At most one per Dia.
type CierreCaja struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FechaCierre        time.Time       `gorm:"not null;index"`
	Dia                time.Time       `gorm:"type:date;not null;uniqueIndex"`
	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalDebito        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalBRL           decimal.Decimal `gorm:"column:total_brl;type:decimal(12,2);not null"`
	CantidadVentas     int             `gorm:"not null"`
	MontoTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notas              *string
}

func (CierreCaja) TableName() string { return "cierres_caja" }
