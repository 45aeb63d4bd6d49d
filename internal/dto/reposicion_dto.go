package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearFuenteRequest struct {
	ProductoID   string           `json:"producto_id"   validate:"required,uuid"`
	Lugar        string           `json:"lugar"         validate:"required,min=2"`
	PrecioCompra *decimal.Decimal `json:"precio_compra"`
	Moneda       string           `json:"moneda"        validate:"omitempty,oneof=UYU BRL"`
	Presentacion *string          `json:"presentacion"`
	Contacto     *string          `json:"contacto"`
	URL          *string          `json:"url"           validate:"omitempty,url"`
	Notas        *string          `json:"notas"`
}

type RegistrarCompraRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	FuenteID       *string         `json:"fuente_id"       validate:"omitempty,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Moneda         string          `json:"moneda"          validate:"omitempty,oneof=UYU BRL"`
	Notas          *string         `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FuenteResponse struct {
	ID           string           `json:"id"`
	ProductoID   string           `json:"producto_id"`
	Lugar        string           `json:"lugar"`
	PrecioCompra *decimal.Decimal `json:"precio_compra"`
	Moneda       string           `json:"moneda"`
	Presentacion *string          `json:"presentacion"`
	Contacto     *string          `json:"contacto"`
	URL          *string          `json:"url"`
	Notas        *string          `json:"notas"`
}

type CompraResponse struct {
	ID             string          `json:"id"`
	Fecha          string          `json:"fecha"`
	ProductoID     string          `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Moneda         string          `json:"moneda"`
	CostoTotal     decimal.Decimal `json:"costo_total"`
	StockNuevo     int             `json:"stock_nuevo"`
}
