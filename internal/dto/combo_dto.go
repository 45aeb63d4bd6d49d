package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ComboItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type CrearComboRequest struct {
	Nombre string             `json:"nombre" validate:"required,min=2,max=120"`
	Precio decimal.Decimal    `json:"precio" validate:"min=0"`
	Items  []ComboItemRequest `json:"items"  validate:"required,min=1,dive"`
}

// ActualizarComboRequest replaces the header and the full component list.
type ActualizarComboRequest struct {
	Nombre string             `json:"nombre" validate:"required,min=2,max=120"`
	Precio decimal.Decimal    `json:"precio" validate:"min=0"`
	Activo *bool              `json:"activo"`
	Items  []ComboItemRequest `json:"items"  validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComboItemResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Stock      int             `json:"stock"`
	Cantidad   int             `json:"cantidad"`
}

type ComboResponse struct {
	ID            string              `json:"id"`
	Nombre        string              `json:"nombre"`
	Precio        decimal.Decimal     `json:"precio"`
	CostoUnitario decimal.Decimal     `json:"costo_unitario"`
	Activo        bool                `json:"activo"`
	Items         []ComboItemResponse `json:"items"`
}
