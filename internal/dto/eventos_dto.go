package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VentaLiquidadaEvento is published after a sale has been settled or voided.
type VentaLiquidadaEvento struct {
	VentaID     uuid.UUID       `json:"venta_id"`
	Anulada     bool            `json:"anulada"`
	Fecha       time.Time       `json:"fecha"`
	Total       decimal.Decimal `json:"total"`
	Moneda      string          `json:"moneda"`
	ProductoIDs []uuid.UUID     `json:"producto_ids"`
}

// EmailCierreJob asks the email worker to mail the PDF of a closing.
type EmailCierreJob struct {
	CierreID uuid.UUID `json:"cierre_id"`
	Destino  string    `json:"destino"`
}
