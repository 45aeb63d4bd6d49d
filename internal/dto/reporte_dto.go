package dto

import "github.com/shopspring/decimal"

// ReporteRangoQuery is bound from GET /v1/reportes.
type ReporteRangoQuery struct {
	Desde string `form:"desde" validate:"required"` // YYYY-MM-DD
	Hasta string `form:"hasta" validate:"required"` // YYYY-MM-DD inclusive
}

type TopProducto struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Unidades   int             `json:"unidades"`
	Ingresos   decimal.Decimal `json:"ingresos"`
}

type ReporteResponse struct {
	Desde            string                     `json:"desde"`
	Hasta            string                     `json:"hasta"`
	TotalVentas      decimal.Decimal            `json:"total_ventas"`
	TotalBRL         decimal.Decimal            `json:"total_brl"`
	CantidadVentas   int                        `json:"cantidad_ventas"`
	CantidadAnuladas int                        `json:"cantidad_anuladas"`
	PorMetodo        map[string]decimal.Decimal `json:"por_metodo"`
	GananciaEstimada decimal.Decimal            `json:"ganancia_estimada"`
	TopProductos     []TopProducto              `json:"top_productos"`
	Alertas          []ProductoResponse         `json:"alertas"`
}
