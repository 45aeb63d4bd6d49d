package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	setStock  []uuid.UUID // ids written through SetStock
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) seed(nombre string, precio, costo int64, stock int) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Nombre:      nombre,
		Precio:      decimal.NewFromInt(precio),
		Costo:       decimal.NewFromInt(costo),
		Stock:       stock,
		StockMinimo: 2,
		Activo:      true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id].Stock
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if f.Nombre != "" && !strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(f.Nombre)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListBajoStock(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.BajoStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) setActivo(id uuid.UUID, activo bool) error {
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	return r.setActivo(id, false)
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	return r.setActivo(id, true)
}

func (r *stubProductoRepo) SetStock(_ context.Context, id uuid.UUID, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	p.Stock = stock
	r.setStock = append(r.setStock, id)
	return nil
}

func (r *stubProductoRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	return r.SetStock(context.Background(), id, stock)
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) AjustarStockMinCero(_ context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	p.Stock = max(0, p.Stock+delta)
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Movimientos ───────────────────────────────────────────────────────────────

type stubMovRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	return r.Create(context.Background(), m)
}

func (r *stubMovRepo) List(_ context.Context, f repository.MovimientoStockFiltro) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovRepo)(nil)

// ── Ventas ────────────────────────────────────────────────────────────────────

// stubVentaRepo is an in-memory VentaRepository. With rpc=true the atomic
// procedures behave like the installed SQL functions; otherwise they report
// ErrRPCNoDisponible.
type stubVentaRepo struct {
	mu        sync.Mutex
	productos *stubProductoRepo
	ventas    map[uuid.UUID]*model.Venta

	rpc           bool
	sondeo        bool // value returned by SoportaRPC
	llamadasRPC   int
	bloquearRPC   bool // CrearAtomica waits for ctx cancellation
	errItems      error
	headersBorrad []uuid.UUID
	// carreraRPC is committed by CrearAtomica just before it reports a unique
	// violation, as when a concurrent request with the same key wins.
	carreraRPC *model.Venta
	// fechaRPC, when set, is the timestamp CrearAtomica stamps like now() in SQL.
	fechaRPC time.Time
}

func newStubVentaRepo(productos *stubProductoRepo, rpc bool) *stubVentaRepo {
	return &stubVentaRepo{productos: productos, ventas: make(map[uuid.UUID]*model.Venta), rpc: rpc, sondeo: rpc}
}

func (r *stubVentaRepo) SoportaRPC(_ context.Context) (bool, error) { return r.sondeo, nil }

func (r *stubVentaRepo) CrearAtomica(ctx context.Context, v *model.Venta) (uuid.UUID, error) {
	r.mu.Lock()
	r.llamadasRPC++
	r.mu.Unlock()
	if r.bloquearRPC {
		<-ctx.Done()
		return uuid.Nil, ctx.Err()
	}
	if !r.rpc {
		return uuid.Nil, fmt.Errorf("%w: function create_sale_atomic does not exist", repository.ErrRPCNoDisponible)
	}
	if r.carreraRPC != nil {
		r.guardar(r.carreraRPC)
		return uuid.Nil, fmt.Errorf("%w: sales_clave_idempotencia_key", repository.ErrDuplicado)
	}
	if !r.fechaRPC.IsZero() {
		v.Fecha = r.fechaRPC
	}
	if v.ClaveIdempotencia != nil {
		if previa, err := r.FindByClave(ctx, *v.ClaveIdempotencia); err == nil {
			return previa.ID, nil
		}
	}
	v.ID = uuid.New()
	for i := range v.Items {
		v.Items[i].VentaID = v.ID
		_ = r.productos.AjustarStockMinCero(ctx, v.Items[i].ProductoID, -v.Items[i].Cantidad)
	}
	r.guardar(v)
	return v.ID, nil
}

func (r *stubVentaRepo) AnularAtomica(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	r.llamadasRPC++
	r.mu.Unlock()
	if !r.rpc {
		return fmt.Errorf("%w: function cancel_sale_atomic does not exist", repository.ErrRPCNoDisponible)
	}
	r.mu.Lock()
	v, ok := r.ventas[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: venta %s", repository.ErrNoEncontrado, id)
	}
	if v.Estado == model.VentaAnulada {
		return fmt.Errorf("%w: venta ya anulada", repository.ErrEstadoInvalido)
	}
	v.Estado = model.VentaAnulada
	for _, it := range v.Items {
		_ = r.productos.AjustarStock(ctx, it.ProductoID, it.Cantidad)
	}
	return nil
}

func (r *stubVentaRepo) guardar(v *model.Venta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	cp.Items = append([]model.VentaItem(nil), v.Items...)
	cp.Combos = append([]model.VentaCombo(nil), v.Combos...)
	r.ventas[v.ID] = &cp
}

func (r *stubVentaRepo) CreateHeader(_ context.Context, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ClaveIdempotencia != nil {
		for _, prev := range r.ventas {
			if prev.ClaveIdempotencia != nil && *prev.ClaveIdempotencia == *v.ClaveIdempotencia {
				return fmt.Errorf("%w: clave_idempotencia", repository.ErrDuplicado)
			}
		}
	}
	cp := *v
	cp.Items, cp.Combos = nil, nil
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) CreateItems(_ context.Context, items []model.VentaItem) error {
	if r.errItems != nil {
		return r.errItems
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		v := r.ventas[it.VentaID]
		v.Items = append(v.Items, it)
	}
	return nil
}

func (r *stubVentaRepo) CreateCombos(_ context.Context, combos []model.VentaCombo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range combos {
		v := r.ventas[c.VentaID]
		v.Combos = append(v.Combos, c)
	}
	return nil
}

func (r *stubVentaRepo) DeleteHeader(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ventas, id)
	r.headersBorrad = append(r.headersBorrad, id)
	return nil
}

func (r *stubVentaRepo) UpdateEstado(_ context.Context, id uuid.UUID, desde, hasta string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok || v.Estado != desde {
		return false, nil
	}
	v.Estado = hasta
	return true, nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) FindByClave(_ context.Context, clave string) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.ventas {
		if v.ClaveIdempotencia != nil && *v.ClaveIdempotencia == clave {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubVentaRepo) ListItems(_ context.Context, id uuid.UUID) ([]model.VentaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, nil
	}
	return append([]model.VentaItem(nil), v.Items...), nil
}

func (r *stubVentaRepo) ListEntre(_ context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		if !v.Fecha.Before(desde) && v.Fecha.Before(hasta) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *stubVentaRepo) List(ctx context.Context, f repository.VentaFiltro) ([]model.Venta, int64, error) {
	todas, _ := r.ListEntre(ctx, f.Desde, f.Hasta)
	var out []model.Venta
	for _, v := range todas {
		if f.Estado == "" || f.Estado == "all" || v.Estado == f.Estado {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

// agregar stores a sale directly, bypassing the engines.
func (r *stubVentaRepo) agregar(fecha time.Time, metodo, moneda string, total int64, estado string) *model.Venta {
	v := &model.Venta{
		ID:         uuid.New(),
		Fecha:      fecha,
		MetodoPago: metodo,
		Total:      decimal.NewFromInt(total),
		Moneda:     moneda,
		Estado:     estado,
	}
	r.guardar(v)
	return v
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Combos ────────────────────────────────────────────────────────────────────

type stubComboRepo struct {
	productos *stubProductoRepo
	combos    map[uuid.UUID]*model.Combo
}

func newStubComboRepo(productos *stubProductoRepo) *stubComboRepo {
	return &stubComboRepo{productos: productos, combos: make(map[uuid.UUID]*model.Combo)}
}

func (r *stubComboRepo) seed(nombre string, precio int64, comps map[uuid.UUID]int) *model.Combo {
	c := &model.Combo{ID: uuid.New(), Nombre: nombre, Precio: decimal.NewFromInt(precio), Activo: true}
	for pid, n := range comps {
		c.Items = append(c.Items, model.ComboItem{ID: uuid.New(), ComboID: c.ID, ProductoID: pid, Cantidad: n})
	}
	r.combos[c.ID] = c
	return c
}

func (r *stubComboRepo) CreateTx(_ *gorm.DB, c *model.Combo) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.combos[c.ID] = &cp
	return nil
}

// FindByID preloads components from the product stub, like Preload("Items.Producto").
func (r *stubComboRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Combo, error) {
	c, ok := r.combos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *c
	cp.Items = make([]model.ComboItem, len(c.Items))
	for i, it := range c.Items {
		cp.Items[i] = it
		if p, err := r.productos.FindByID(ctx, it.ProductoID); err == nil {
			cp.Items[i].Producto = p
		}
	}
	return &cp, nil
}

func (r *stubComboRepo) List(ctx context.Context, soloActivos bool) ([]model.Combo, error) {
	var out []model.Combo
	for id, c := range r.combos {
		if soloActivos && !c.Activo {
			continue
		}
		cp, _ := r.FindByID(ctx, id)
		out = append(out, *cp)
	}
	return out, nil
}

func (r *stubComboRepo) UpdateHeaderTx(_ *gorm.DB, c *model.Combo) error {
	prev, ok := r.combos[c.ID]
	if !ok {
		return repository.ErrNoEncontrado
	}
	prev.Nombre, prev.Precio, prev.Activo = c.Nombre, c.Precio, c.Activo
	return nil
}

func (r *stubComboRepo) ReplaceItemsTx(_ *gorm.DB, comboID uuid.UUID, items []model.ComboItem) error {
	c, ok := r.combos[comboID]
	if !ok {
		return repository.ErrNoEncontrado
	}
	c.Items = nil
	for _, it := range items {
		it.ComboID = comboID
		it.Producto = nil
		c.Items = append(c.Items, it)
	}
	return nil
}

func (r *stubComboRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.combos[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	c.Activo = false
	return nil
}

func (r *stubComboRepo) DB() *gorm.DB { return nil }

var _ repository.ComboRepository = (*stubComboRepo)(nil)

// ── Tasa de cambio ────────────────────────────────────────────────────────────

type stubTasaRepo struct{ tasa *model.TasaCambio }

func (r *stubTasaRepo) Get(_ context.Context, desde, hasta string) (*model.TasaCambio, error) {
	if r.tasa == nil || r.tasa.MonedaDesde != desde || r.tasa.MonedaHasta != hasta {
		return nil, repository.ErrNoEncontrado
	}
	cp := *r.tasa
	return &cp, nil
}

func (r *stubTasaRepo) Upsert(_ context.Context, t *model.TasaCambio) error {
	cp := *t
	r.tasa = &cp
	return nil
}

var _ repository.TasaCambioRepository = (*stubTasaRepo)(nil)

// ── Cierres ───────────────────────────────────────────────────────────────────

type stubCierreRepo struct {
	cierres   []model.CierreCaja
	forzarDup bool // Create reports a unique violation
}

func (r *stubCierreRepo) ExisteEntre(_ context.Context, desde, hasta time.Time) (bool, error) {
	for _, c := range r.cierres {
		if !c.FechaCierre.Before(desde) && c.FechaCierre.Before(hasta) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCierreRepo) Create(_ context.Context, c *model.CierreCaja) error {
	if r.forzarDup {
		return fmt.Errorf("%w: idx_cierres_caja_dia", repository.ErrDuplicado)
	}
	c.ID = uuid.New()
	r.cierres = append(r.cierres, *c)
	return nil
}

func (r *stubCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	for i := range r.cierres {
		if r.cierres[i].ID == id {
			return &r.cierres[i], nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubCierreRepo) FindEntre(_ context.Context, desde, hasta time.Time) (*model.CierreCaja, error) {
	for i := range r.cierres {
		c := &r.cierres[i]
		if !c.FechaCierre.Before(desde) && c.FechaCierre.Before(hasta) {
			return c, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubCierreRepo) ListRecientes(_ context.Context, limit int) ([]model.CierreCaja, error) {
	if len(r.cierres) > limit {
		return r.cierres[:limit], nil
	}
	return r.cierres, nil
}

var _ repository.CierreRepository = (*stubCierreRepo)(nil)

// ── Reposición ────────────────────────────────────────────────────────────────

type stubReposicionRepo struct {
	productos   *stubProductoRepo
	rpc         bool
	llamadasRPC int
	fuentes     map[uuid.UUID]*model.FuenteReposicion
	compras     []model.CompraReposicion
}

func newStubReposicionRepo(productos *stubProductoRepo, rpc bool) *stubReposicionRepo {
	return &stubReposicionRepo{productos: productos, rpc: rpc, fuentes: make(map[uuid.UUID]*model.FuenteReposicion)}
}

func (r *stubReposicionRepo) CreateFuente(_ context.Context, f *model.FuenteReposicion) error {
	f.ID = uuid.New()
	cp := *f
	r.fuentes[f.ID] = &cp
	return nil
}

func (r *stubReposicionRepo) ListFuentes(_ context.Context, productoID *uuid.UUID) ([]model.FuenteReposicion, error) {
	var out []model.FuenteReposicion
	for _, f := range r.fuentes {
		if productoID == nil || f.ProductoID == *productoID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *stubReposicionRepo) DeleteFuente(_ context.Context, id uuid.UUID) error {
	if _, ok := r.fuentes[id]; !ok {
		return repository.ErrNoEncontrado
	}
	delete(r.fuentes, id)
	return nil
}

func (r *stubReposicionRepo) CreateCompra(_ context.Context, c *model.CompraReposicion) error {
	c.ID = uuid.New()
	r.compras = append(r.compras, *c)
	return nil
}

func (r *stubReposicionRepo) IncrementarStockRPC(ctx context.Context, productoID uuid.UUID, cantidad int) (int, error) {
	r.llamadasRPC++
	if !r.rpc {
		return 0, fmt.Errorf("%w: function increment_stock does not exist", repository.ErrRPCNoDisponible)
	}
	if err := r.productos.AjustarStock(ctx, productoID, cantidad); err != nil {
		return 0, err
	}
	return r.productos.stock(productoID), nil
}

var _ repository.ReposicionRepository = (*stubReposicionRepo)(nil)

// ── Colaboradores ─────────────────────────────────────────────────────────────

type stubPublicador struct {
	eventos chan dto.VentaLiquidadaEvento
	err     error
}

func newStubPublicador(err error) *stubPublicador {
	return &stubPublicador{eventos: make(chan dto.VentaLiquidadaEvento, 8), err: err}
}

func (p *stubPublicador) PublicarVentaLiquidada(_ context.Context, e dto.VentaLiquidadaEvento) error {
	p.eventos <- e
	return p.err
}

type stubEncolador struct{ jobs []dto.EmailCierreJob }

func (e *stubEncolador) EncolarEmailCierre(_ context.Context, job dto.EmailCierreJob) error {
	e.jobs = append(e.jobs, job)
	return nil
}

type stubPDF struct{}

func (stubPDF) GenerarCierre(c *model.CierreCaja) ([]byte, error) {
	if c == nil {
		return nil, errors.New("sin cierre")
	}
	return []byte("%PDF-" + c.ID.String()), nil
}
