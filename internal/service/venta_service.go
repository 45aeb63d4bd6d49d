package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kiosco/internal/carrito"
	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Liquidacion is the settlement input: a finalized cart already expanded into
// sale items (combo components at price zero) and combo summaries.
type Liquidacion struct {
	MetodoPago        string
	Total             decimal.Decimal
	Nota              *string
	Moneda            string
	ClaveIdempotencia *string
	Items             []model.VentaItem
	Combos            []model.VentaCombo
}

// PublicadorEventos receives settlement events. Implementations must not block
// for long; the service calls them off the request path.
type PublicadorEventos interface {
	PublicarVentaLiquidada(ctx context.Context, e dto.VentaLiquidadaEvento) error
}

type VentaService interface {
	// Liquidar persists a sale and decrements stock, returning the sale id.
	Liquidar(ctx context.Context, l Liquidacion) (uuid.UUID, error)
	// RegistrarVenta rebuilds the till cart from the request and settles it.
	RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

// VentaOpciones carries the configuration the sale engines depend on.
type VentaOpciones struct {
	Recargos        carrito.Recargos
	Timeout         time.Duration
	ModoStock       string
	MonedaPrincipal string
	Location        *time.Location
	Reloj           func() time.Time
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	comboRepo    repository.ComboRepository
	tasas        TasaCambioService
	publicador   PublicadorEventos
	liquidador   estrategiaLiquidacion
	opts         VentaOpciones
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	comboRepo repository.ComboRepository,
	movRepo repository.MovimientoStockRepository,
	tasas TasaCambioService,
	publicador PublicadorEventos,
	opts VentaOpciones,
) VentaService {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MonedaPrincipal == "" {
		opts.MonedaPrincipal = model.MonedaUYU
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Reloj == nil {
		opts.Reloj = time.Now
	}
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		comboRepo:    comboRepo,
		tasas:        tasas,
		publicador:   publicador,
		liquidador:   nuevoLiquidador(repo, productoRepo, movRepo, opts.ModoStock),
		opts:         opts,
	}
}

// ── Liquidar ──────────────────────────────────────────────────────────────────

func (s *ventaService) Liquidar(ctx context.Context, l Liquidacion) (uuid.UUID, error) {
	venta, err := s.validar(l)
	if err != nil {
		return uuid.Nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	id, previa, err := s.liquidador.Registrar(opCtx, venta)
	if err != nil && !errors.Is(err, ErrLiquidacionParcial) {
		if opCtx.Err() != nil {
			return uuid.Nil, fmt.Errorf("%w: %v", ErrResultadoIncierto, err)
		}
		return uuid.Nil, err
	}
	if previa {
		return id, nil
	}
	venta.ID = id
	s.publicar(venta, false)
	return id, err
}

func (s *ventaService) validar(l Liquidacion) (*model.Venta, error) {
	if len(l.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene productos", ErrValidacion)
	}
	metodo := strings.TrimSpace(l.MetodoPago)
	if metodo == "" {
		return nil, fmt.Errorf("%w: falta el método de pago", ErrValidacion)
	}
	if !metodoValido(metodo) {
		return nil, fmt.Errorf("%w: método de pago desconocido %q", ErrValidacion, metodo)
	}
	moneda := strings.ToUpper(strings.TrimSpace(l.Moneda))
	if moneda == "" {
		moneda = s.opts.MonedaPrincipal
	}
	if moneda != model.MonedaUYU && moneda != model.MonedaBRL {
		return nil, fmt.Errorf("%w: moneda no soportada %q", ErrValidacion, l.Moneda)
	}
	if l.Total.IsNegative() {
		return nil, fmt.Errorf("%w: el total no puede ser negativo", ErrValidacion)
	}
	for _, it := range l.Items {
		if it.Cantidad <= 0 {
			return nil, fmt.Errorf("%w: cantidad debe ser mayor a cero", ErrValidacion)
		}
		if it.PrecioUnitario.IsNegative() || it.Recargo.IsNegative() {
			return nil, fmt.Errorf("%w: precio o recargo negativo", ErrValidacion)
		}
	}
	if l.ClaveIdempotencia != nil && strings.TrimSpace(*l.ClaveIdempotencia) == "" {
		l.ClaveIdempotencia = nil
	}

	return &model.Venta{
		Fecha:             s.opts.Reloj(),
		MetodoPago:        metodo,
		Total:             l.Total,
		Moneda:            moneda,
		Estado:            model.VentaActiva,
		Nota:              l.Nota,
		ClaveIdempotencia: l.ClaveIdempotencia,
		Items:             append([]model.VentaItem(nil), l.Items...),
		Combos:            append([]model.VentaCombo(nil), l.Combos...),
	}, nil
}

// publicar notifies observers on a detached goroutine; failures are only logged.
func (s *ventaService) publicar(v *model.Venta, anulada bool) {
	if s.publicador == nil {
		return
	}
	evento := dto.VentaLiquidadaEvento{
		VentaID: v.ID,
		Anulada: anulada,
		Fecha:   v.Fecha,
		Total:   v.Total,
		Moneda:  v.Moneda,
	}
	vistos := make(map[uuid.UUID]bool, len(v.Items))
	for _, it := range v.Items {
		if !vistos[it.ProductoID] {
			vistos[it.ProductoID] = true
			evento.ProductoIDs = append(evento.ProductoIDs, it.ProductoID)
		}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("venta_id", evento.VentaID.String()).Msg("publicador de eventos")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publicador.PublicarVentaLiquidada(ctx, evento); err != nil {
			log.Warn().Err(err).Str("venta_id", evento.VentaID.String()).Msg("evento de venta no publicado")
		}
	}()
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// Replays the till: each line goes through the cart builder exactly as the UI
// composed it, so stock clamping, add-ons and combo checks match.

func (s *ventaService) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// A resent key returns the recorded sale before the cart is rebuilt against
	// stock that the first attempt already consumed.
	if req.ClaveIdempotencia != nil && strings.TrimSpace(*req.ClaveIdempotencia) != "" {
		if previa, err := s.repo.FindByClave(ctx, *req.ClaveIdempotencia); err == nil {
			return s.ObtenerVenta(ctx, previa.ID)
		} else if !errors.Is(err, repository.ErrNoEncontrado) {
			return nil, err
		}
	}

	c, nombres, err := s.armarCarrito(ctx, req.Lineas)
	if err != nil {
		return nil, err
	}
	items, combos := c.Expandir()

	total := c.Total()
	if req.Total != nil {
		total = *req.Total
	}
	moneda := req.Moneda
	if moneda == "" {
		moneda = s.opts.MonedaPrincipal
	}

	var vuelto *decimal.Decimal
	if req.Pago != nil {
		recibido, err := s.tasas.Convertir(ctx, req.Pago.Monto, req.Pago.Moneda, moneda)
		if err != nil {
			return nil, err
		}
		if recibido.LessThan(total) {
			return nil, fmt.Errorf("%w: el pago es insuficiente", ErrValidacion)
		}
		v := recibido.Sub(total).Round(2)
		vuelto = &v
	}

	id, err := s.Liquidar(ctx, Liquidacion{
		MetodoPago:        req.MetodoPago,
		Total:             total,
		Nota:              req.Nota,
		Moneda:            moneda,
		ClaveIdempotencia: req.ClaveIdempotencia,
		Items:             items,
		Combos:            combos,
	})
	if err != nil {
		return nil, err
	}

	fecha := s.opts.Reloj()
	if guardada, err := s.repo.FindByID(ctx, id); err == nil {
		fecha = guardada.Fecha
	} else {
		log.Warn().Err(err).Str("venta_id", id.String()).Msg("venta registrada pero no se pudo releer")
	}

	resp := ventaToResponse(&model.Venta{
		ID:         id,
		Fecha:      fecha,
		MetodoPago: strings.TrimSpace(req.MetodoPago),
		Total:      total,
		Moneda:     moneda,
		Estado:     model.VentaActiva,
		Nota:       req.Nota,
		Items:      items,
		Combos:     combos,
	}, s.opts.Location)
	for i := range resp.Items {
		resp.Items[i].Producto = nombres[items[i].ProductoID]
	}
	resp.Vuelto = vuelto
	return resp, nil
}

func (s *ventaService) armarCarrito(ctx context.Context, lineas []dto.LineaVentaRequest) (*carrito.Carrito, map[uuid.UUID]string, error) {
	if len(lineas) == 0 {
		return nil, nil, fmt.Errorf("%w: la venta no tiene productos", ErrValidacion)
	}

	var ids []uuid.UUID
	for _, l := range lineas {
		if l.ProductoID == nil {
			continue
		}
		id, err := uuid.Parse(*l.ProductoID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: producto_id inválido", ErrValidacion)
		}
		ids = append(ids, id)
	}
	productos, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	catalogo := make(map[uuid.UUID]model.Producto, len(productos))
	nombres := make(map[uuid.UUID]string)
	for _, p := range productos {
		catalogo[p.ID] = p
		nombres[p.ID] = p.Nombre
	}

	c := carrito.Nuevo(s.opts.Recargos)
	usados := make(map[uuid.UUID]bool)
	for _, l := range lineas {
		var lineaID int
		switch {
		case l.ProductoID != nil:
			id := uuid.MustParse(*l.ProductoID)
			p, ok := catalogo[id]
			if !ok || !p.Activo {
				return nil, nil, fmt.Errorf("%w: producto %s no disponible", ErrValidacion, id)
			}
			if usados[id] {
				return nil, nil, fmt.Errorf("%w: producto %q repetido", ErrValidacion, p.Nombre)
			}
			usados[id] = true
			if l.StockCapturado != nil {
				p.Stock = *l.StockCapturado
			}
			if lineaID, err = c.AgregarProducto(p); err != nil {
				return nil, nil, err
			}
			if _, err = c.SetCantidad(lineaID, l.Cantidad); err != nil {
				return nil, nil, err
			}
		case l.ComboID != nil:
			comboID, err := uuid.Parse(*l.ComboID)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: combo_id inválido", ErrValidacion)
			}
			if usados[comboID] {
				return nil, nil, fmt.Errorf("%w: combo repetido", ErrValidacion)
			}
			usados[comboID] = true
			cb, err := s.comboRepo.FindByID(ctx, comboID)
			if err != nil || !cb.Activo {
				return nil, nil, fmt.Errorf("%w: combo %s no disponible", ErrValidacion, comboID)
			}
			for _, it := range cb.Items {
				if it.Producto != nil {
					nombres[it.ProductoID] = it.Producto.Nombre
				}
			}
			for n := 0; n < l.Cantidad; n++ {
				if lineaID, err = c.AgregarCombo(*cb); err != nil {
					return nil, nil, err
				}
			}
		default:
			return nil, nil, fmt.Errorf("%w: línea sin producto ni combo", ErrValidacion)
		}

		if l.Precio != nil {
			if err := c.SetPrecio(lineaID, *l.Precio); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrValidacion, err)
			}
		}
		if l.ShotExtra {
			if err := c.ToggleShotExtra(lineaID); err != nil {
				return nil, nil, err
			}
		}
		if l.Monster {
			if err := c.ToggleMonster(lineaID); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrValidacion, err)
			}
		}
	}
	return c, nombres, nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.liquidador.Anular(opCtx, id); err != nil {
		if opCtx.Err() != nil && !errors.Is(err, ErrVentaNoEncontrada) && !errors.Is(err, ErrVentaYaAnulada) {
			return fmt.Errorf("%w: %v", ErrResultadoIncierto, err)
		}
		return err
	}

	if s.publicador != nil {
		if v, err := s.repo.FindByID(ctx, id); err == nil {
			s.publicar(v, true)
		}
	}
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrVentaNoEncontrada
		}
		return nil, err
	}
	return ventaToResponse(v, s.opts.Location), nil
}

// ListVentas returns a paginated list of sales in [desde, hasta], both days
// inclusive in the kiosk's timezone. Default: today.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	desde, hasta, err := rangoDias(filter.Desde, filter.Hasta, s.opts.Reloj(), s.opts.Location)
	if err != nil {
		return nil, err
	}

	ventas, total, err := s.repo.List(ctx, repository.VentaFiltro{
		Desde:  desde,
		Hasta:  hasta,
		Estado: filter.Estado,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i], s.opts.Location))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const formatoDia = "2006-01-02"

func inicioDelDia(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// rangoDias parses YYYY-MM-DD bounds into [desde 00:00, hasta+1 00:00).
func rangoDias(desdeStr, hastaStr string, ahora time.Time, loc *time.Location) (time.Time, time.Time, error) {
	desde := inicioDelDia(ahora, loc)
	if desdeStr != "" {
		d, err := time.ParseInLocation(formatoDia, desdeStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha desde inválida", ErrValidacion)
		}
		desde = d
	}
	hasta := desde
	if hastaStr != "" {
		h, err := time.ParseInLocation(formatoDia, hastaStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha hasta inválida", ErrValidacion)
		}
		hasta = h
	}
	if hasta.Before(desde) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: el rango de fechas está invertido", ErrValidacion)
	}
	return desde, hasta.AddDate(0, 0, 1), nil
}

func ventaToResponse(v *model.Venta, loc *time.Location) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:         v.ID.String(),
		Fecha:      v.Fecha.In(loc).Format(time.RFC3339),
		MetodoPago: v.MetodoPago,
		Total:      v.Total,
		Moneda:     v.Moneda,
		Estado:     v.Estado,
		Nota:       v.Nota,
		Items:      make([]dto.ItemVentaResponse, 0, len(v.Items)),
		Combos:     make([]dto.ComboVendidoResponse, 0, len(v.Combos)),
	}
	for _, it := range v.Items {
		item := dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Recargo:        it.Recargo,
		}
		if it.Producto != nil {
			item.Producto = it.Producto.Nombre
		}
		if it.ComboID != nil {
			cid := it.ComboID.String()
			item.ComboID = &cid
		}
		resp.Items = append(resp.Items, item)
	}
	for _, c := range v.Combos {
		resp.Combos = append(resp.Combos, dto.ComboVendidoResponse{
			ComboID:        c.ComboID.String(),
			Nombre:         c.Nombre,
			Cantidad:       c.Cantidad,
			PrecioUnitario: c.PrecioUnitario,
			CostoUnitario:  c.CostoUnitario,
		})
	}
	return resp
}
