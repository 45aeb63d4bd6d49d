package service

import (
	"context"
	"sort"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topProductosLimite = 10

type ReporteService interface {
	Hoy(ctx context.Context) (*dto.ReporteResponse, error)
	// Semana covers the seven days before today plus today.
	Semana(ctx context.Context) (*dto.ReporteResponse, error)
	// Mes covers the current calendar month up to today.
	Mes(ctx context.Context) (*dto.ReporteResponse, error)
	Rango(ctx context.Context, q dto.ReporteRangoQuery) (*dto.ReporteResponse, error)
}

type reporteService struct {
	ventaRepo        repository.VentaRepository
	productoRepo     repository.ProductoRepository
	loc              *time.Location
	reloj            func() time.Time
	monedaSecundaria string
}

func NewReporteService(
	ventaRepo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	loc *time.Location,
	reloj func() time.Time,
	monedaSecundaria string,
) ReporteService {
	if loc == nil {
		loc = time.Local
	}
	if reloj == nil {
		reloj = time.Now
	}
	return &reporteService{
		ventaRepo:        ventaRepo,
		productoRepo:     productoRepo,
		loc:              loc,
		reloj:            reloj,
		monedaSecundaria: monedaSecundaria,
	}
}

func (s *reporteService) hoy() time.Time { return inicioDelDia(s.reloj(), s.loc) }

func (s *reporteService) Hoy(ctx context.Context) (*dto.ReporteResponse, error) {
	inicio := s.hoy()
	return s.generar(ctx, inicio, inicio.AddDate(0, 0, 1))
}

func (s *reporteService) Semana(ctx context.Context) (*dto.ReporteResponse, error) {
	inicio := s.hoy()
	return s.generar(ctx, inicio.AddDate(0, 0, -7), inicio.AddDate(0, 0, 1))
}

func (s *reporteService) Mes(ctx context.Context) (*dto.ReporteResponse, error) {
	inicio := s.hoy()
	primero := time.Date(inicio.Year(), inicio.Month(), 1, 0, 0, 0, 0, s.loc)
	return s.generar(ctx, primero, inicio.AddDate(0, 0, 1))
}

func (s *reporteService) Rango(ctx context.Context, q dto.ReporteRangoQuery) (*dto.ReporteResponse, error) {
	desde, hasta, err := rangoDias(q.Desde, q.Hasta, s.reloj(), s.loc)
	if err != nil {
		return nil, err
	}
	return s.generar(ctx, desde, hasta)
}

func (s *reporteService) generar(ctx context.Context, desde, hasta time.Time) (*dto.ReporteResponse, error) {
	ventas, err := s.ventaRepo.ListEntre(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	alertas, err := s.productoRepo.ListBajoStock(ctx)
	if err != nil {
		return nil, err
	}

	r := calcularReporte(ventas, s.monedaSecundaria)
	r.Desde = desde.Format(formatoDia)
	r.Hasta = hasta.AddDate(0, 0, -1).Format(formatoDia)
	r.Alertas = make([]dto.ProductoResponse, 0, len(alertas))
	for i := range alertas {
		r.Alertas = append(r.Alertas, *productoToResponse(&alertas[i]))
	}
	return r, nil
}

// calcularReporte aggregates active sales. Voided sales are only counted.
// Profit covers primary-currency sales: plain lines qty×(price−cost)+surcharge,
// combos qty×(price−component cost); zero-priced combo components add nothing.
func calcularReporte(ventas []model.Venta, monedaSecundaria string) *dto.ReporteResponse {
	r := &dto.ReporteResponse{
		TotalVentas:      decimal.Zero,
		TotalBRL:         decimal.Zero,
		GananciaEstimada: decimal.Zero,
		PorMetodo:        map[string]decimal.Decimal{},
	}
	type acumulado struct {
		nombre   string
		unidades int
		ingresos decimal.Decimal
	}
	top := map[uuid.UUID]*acumulado{}

	for _, v := range ventas {
		if v.Estado == model.VentaAnulada {
			r.CantidadAnuladas++
			continue
		}
		r.CantidadVentas++
		secundaria := v.Moneda == monedaSecundaria
		if secundaria {
			r.TotalBRL = r.TotalBRL.Add(v.Total)
		} else {
			r.TotalVentas = r.TotalVentas.Add(v.Total)
			metodo := normalizarMetodo(v.MetodoPago)
			r.PorMetodo[metodo] = r.PorMetodo[metodo].Add(v.Total)
		}

		for _, it := range v.Items {
			a, ok := top[it.ProductoID]
			if !ok {
				a = &acumulado{ingresos: decimal.Zero}
				top[it.ProductoID] = a
			}
			if it.Producto != nil {
				a.nombre = it.Producto.Nombre
			}
			a.unidades += it.Cantidad
			if it.ComboID != nil {
				continue
			}
			cant := decimal.NewFromInt(int64(it.Cantidad))
			a.ingresos = a.ingresos.Add(it.PrecioUnitario.Mul(cant).Add(it.Recargo))
			if !secundaria && it.Producto != nil {
				margen := it.PrecioUnitario.Sub(it.Producto.Costo).Mul(cant).Add(it.Recargo)
				r.GananciaEstimada = r.GananciaEstimada.Add(margen)
			}
		}
		if !secundaria {
			for _, c := range v.Combos {
				margen := c.PrecioUnitario.Sub(c.CostoUnitario).Mul(decimal.NewFromInt(int64(c.Cantidad)))
				r.GananciaEstimada = r.GananciaEstimada.Add(margen)
			}
		}
	}

	r.TopProductos = make([]dto.TopProducto, 0, len(top))
	for id, a := range top {
		r.TopProductos = append(r.TopProductos, dto.TopProducto{
			ProductoID: id.String(),
			Nombre:     a.nombre,
			Unidades:   a.unidades,
			Ingresos:   a.ingresos,
		})
	}
	sort.Slice(r.TopProductos, func(i, j int) bool {
		if r.TopProductos[i].Unidades != r.TopProductos[j].Unidades {
			return r.TopProductos[i].Unidades > r.TopProductos[j].Unidades
		}
		return r.TopProductos[i].Nombre < r.TopProductos[j].Nombre
	})
	if len(r.TopProductos) > topProductosLimite {
		r.TopProductos = r.TopProductos[:topProductosLimite]
	}
	return r
}
