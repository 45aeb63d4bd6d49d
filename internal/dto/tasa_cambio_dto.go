package dto

import "github.com/shopspring/decimal"

type TasaCambioRequest struct {
	Tasa decimal.Decimal `json:"tasa" validate:"gt=0"`
}

type TasaCambioResponse struct {
	Desde     string          `json:"desde"`
	Hasta     string          `json:"hasta"`
	Tasa      decimal.Decimal `json:"tasa"`
	UpdatedAt string          `json:"updated_at"`
}
