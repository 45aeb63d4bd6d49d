package dto

import "github.com/shopspring/decimal"

type CerrarCajaRequest struct {
	Notas *string `json:"notas" validate:"omitempty,max=500"`
	// EmailDestino overrides CIERRE_EMAIL_DESTINO for this closing's PDF.
	EmailDestino *string `json:"email_destino" validate:"omitempty,email"`
}

type CierreResponse struct {
	ID                 string          `json:"id"`
	FechaCierre        string          `json:"fecha_cierre"`
	Dia                string          `json:"dia"`
	TotalEfectivo      decimal.Decimal `json:"total_efectivo"`
	TotalDebito        decimal.Decimal `json:"total_debito"`
	TotalTransferencia decimal.Decimal `json:"total_transferencia"`
	TotalBRL           decimal.Decimal `json:"total_brl"`
	CantidadVentas     int             `json:"cantidad_ventas"`
	MontoTotal         decimal.Decimal `json:"monto_total"`
	Notas              *string         `json:"notas,omitempty"`
}
