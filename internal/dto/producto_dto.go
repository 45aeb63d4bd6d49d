package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=2,max=120"`
	Categoria   *string         `json:"categoria"    validate:"omitempty,oneof=Bebidas Alimento Vasos Otros"`
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	Costo       decimal.Decimal `json:"costo"        validate:"min=0"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2,max=120"`
	Categoria   *string          `json:"categoria"    validate:"omitempty,oneof=Bebidas Alimento Vasos Otros"`
	Precio      *decimal.Decimal `json:"precio"`
	Costo       *decimal.Decimal `json:"costo"`
	StockMinimo *int             `json:"stock_minimo" validate:"omitempty,min=0"`
}

// AjustarStockRequest sets the absolute stock of a product (inventory count).
type AjustarStockRequest struct {
	Stock  int    `json:"stock"  validate:"min=0"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"`               // "false" = inactivos, "all" = todos, default activos
	Orden     string `form:"orden,default=nombre"` // nombre | stock | reponer
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Categoria   *string         `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	Costo       decimal.Decimal `json:"costo"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	Activo      bool            `json:"activo"`
	BajoStock   bool            `json:"bajo_stock"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// MovimientosQuery is bound from GET /v1/productos/:id/movimientos.
type MovimientosQuery struct {
	Tipo  string `form:"tipo"  validate:"omitempty,oneof=venta anulacion reposicion ajuste_manual"`
	Desde string `form:"desde"` // YYYY-MM-DD
	Hasta string `form:"hasta"` // YYYY-MM-DD inclusive
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type MovimientoResponse struct {
	ID            string  `json:"id"`
	Fecha         string  `json:"fecha"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo,omitempty"`
	ReferenciaID  *string `json:"referencia_id,omitempty"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
