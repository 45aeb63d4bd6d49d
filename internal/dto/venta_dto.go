package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Desde  string `form:"desde"`              // YYYY-MM-DD; empty = today
	Hasta  string `form:"hasta"`              // YYYY-MM-DD inclusive; empty = Desde
	Estado string `form:"estado,default=all"` // activa | anulada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaVentaRequest is one cart line. Exactly one of ProductoID / ComboID is set.
type LineaVentaRequest struct {
	ProductoID *string `json:"producto_id" validate:"required_without=ComboID,excluded_with=ComboID,omitempty,uuid"`
	ComboID    *string `json:"combo_id"    validate:"required_without=ProductoID,excluded_with=ProductoID,omitempty,uuid"`
	Cantidad   int     `json:"cantidad"    validate:"required,min=1"`
	// Precio overrides the catalog unit price (manual price edit at the till).
	Precio    *decimal.Decimal `json:"precio"`
	ShotExtra bool             `json:"shot_extra"`
	Monster   bool             `json:"monster"`
	// StockCapturado is the stock the client saw when the line was added.
	// When absent the server catalog snapshot is used.
	StockCapturado *int `json:"stock_capturado" validate:"omitempty,min=0"`
}

type PagoRecibidoRequest struct {
	Monto  decimal.Decimal `json:"monto"  validate:"min=0"`
	Moneda string          `json:"moneda" validate:"required,oneof=UYU BRL"`
}

type RegistrarVentaRequest struct {
	Lineas     []LineaVentaRequest `json:"lineas"      validate:"required,min=1,dive"`
	MetodoPago string              `json:"metodo_pago" validate:"required"`
	Moneda     string              `json:"moneda"      validate:"omitempty,oneof=UYU BRL"`
	// Total overrides the computed cart total when set.
	Total *decimal.Decimal `json:"total"`
	Nota  *string          `json:"nota"`
	// ClaveIdempotencia is generated by the client; resending it never duplicates a sale.
	ClaveIdempotencia *string              `json:"clave_idempotencia" validate:"omitempty,max=64"`
	Pago              *PagoRecibidoRequest `json:"pago"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Recargo        decimal.Decimal `json:"recargo"`
	ComboID        *string         `json:"combo_id,omitempty"`
}

type ComboVendidoResponse struct {
	ComboID        string          `json:"combo_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
}

type VentaResponse struct {
	ID         string                 `json:"id"`
	Fecha      string                 `json:"fecha"`
	MetodoPago string                 `json:"metodo_pago"`
	Total      decimal.Decimal        `json:"total"`
	Moneda     string                 `json:"moneda"`
	Estado     string                 `json:"estado"`
	Nota       *string                `json:"nota,omitempty"`
	Items      []ItemVentaResponse    `json:"items"`
	Combos     []ComboVendidoResponse `json:"combos"`
	// Vuelto is the change owed in the sale currency, present when a payment was declared.
	Vuelto *decimal.Decimal `json:"vuelto,omitempty"`
}
