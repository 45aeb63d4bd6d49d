package service_test

import (
	"context"
	"testing"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/model"
	"kiosco/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Productos ─────────────────────────────────────────────────────────────────

func TestProducto_CrearYActualizarNoTocaStock(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo, &stubMovRepo{}, time.UTC)

	p, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Nombre: "  Fernet 750 ", Precio: dec(450), Costo: dec(300), Stock: 6, StockMinimo: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fernet 750", p.Nombre)
	assert.True(t, p.Activo)

	id := uuid.MustParse(p.ID)
	nuevo := dec(480)
	p, err = svc.Actualizar(context.Background(), id, dto.ActualizarProductoRequest{Precio: &nuevo})
	require.NoError(t, err)
	assert.True(t, nuevo.Equal(p.Precio))
	assert.Equal(t, 6, p.Stock)

	negativo := dec(-1)
	_, err = svc.Actualizar(context.Background(), id, dto.ActualizarProductoRequest{Costo: &negativo})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = svc.ObtenerPorID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestProducto_AjustarStockAudita(t *testing.T) {
	repo := newStubProductoRepo()
	movs := &stubMovRepo{}
	svc := service.NewProductoService(repo, movs, time.UTC)
	p := repo.seed("Hielo", 60, 30, 4)

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{Stock: 12, Motivo: "conteo"})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Stock)
	assert.False(t, resp.BajoStock)
	assert.Equal(t, 12, repo.stock(p.ID))

	require.Len(t, movs.movimientos, 1)
	m := movs.movimientos[0]
	assert.Equal(t, model.MovimientoAjusteManual, m.Tipo)
	assert.Equal(t, 8, m.Cantidad)
	assert.Equal(t, 4, m.StockAnterior)

	_, err = svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{Stock: -1, Motivo: "error"})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestProducto_Movimientos(t *testing.T) {
	repo := newStubProductoRepo()
	movs := &stubMovRepo{}
	svc := service.NewProductoService(repo, movs, time.UTC)
	p := repo.seed("Hielo", 60, 30, 4)
	otro := repo.seed("Agua", 40, 20, 10)

	_, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{Stock: 7, Motivo: "conteo"})
	require.NoError(t, err)
	_, err = svc.AjustarStock(context.Background(), otro.ID, dto.AjustarStockRequest{Stock: 9, Motivo: "rotura"})
	require.NoError(t, err)

	resp, err := svc.Movimientos(context.Background(), p.ID, dto.MovimientosQuery{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Data[0].Cantidad)
	assert.Equal(t, 7, resp.Data[0].StockNuevo)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)

	resp, err = svc.Movimientos(context.Background(), p.ID, dto.MovimientosQuery{Tipo: model.MovimientoVenta})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)

	_, err = svc.Movimientos(context.Background(), p.ID, dto.MovimientosQuery{Desde: "14/03/2026"})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = svc.Movimientos(context.Background(), uuid.New(), dto.MovimientosQuery{})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestProducto_DesactivarReactivarYAlertas(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo, &stubMovRepo{}, time.UTC)
	p := repo.seed("Chicle", 10, 5, 1)
	repo.seed("Agua", 40, 20, 30)

	alertas, err := svc.Alertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, "Chicle", alertas[0].Nombre)

	require.NoError(t, svc.Desactivar(context.Background(), p.ID))
	got, err := svc.ObtenerPorID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.Activo)

	require.NoError(t, svc.Reactivar(context.Background(), p.ID))
	assert.ErrorIs(t, svc.Desactivar(context.Background(), uuid.New()), service.ErrNoEncontrado)

	lista, err := svc.Listar(context.Background(), dto.ProductoFilter{Nombre: "agu"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)
	assert.Equal(t, 100, lista.Limit)
}

// ── Combos ────────────────────────────────────────────────────────────────────

func TestCombo_CrearCalculaCosto(t *testing.T) {
	productos := newStubProductoRepo()
	repo := newStubComboRepo(productos)
	svc := service.NewComboService(repo, productos)
	x := productos.seed("X", 120, 60, 10)
	y := productos.seed("Y", 90, 30, 10)

	c, err := svc.Crear(context.Background(), dto.CrearComboRequest{
		Nombre: "Combo XY",
		Precio: dec(300),
		Items: []dto.ComboItemRequest{
			{ProductoID: x.ID.String(), Cantidad: 1},
			{ProductoID: y.ID.String(), Cantidad: 2},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec(120).Equal(c.CostoUnitario))
	require.Len(t, c.Items, 2)
	assert.Equal(t, "X", c.Items[0].Nombre)

	got, err := svc.Obtener(context.Background(), uuid.MustParse(c.ID))
	require.NoError(t, err)
	assert.Equal(t, "Combo XY", got.Nombre)
}

func TestCombo_Validaciones(t *testing.T) {
	productos := newStubProductoRepo()
	svc := service.NewComboService(newStubComboRepo(productos), productos)
	x := productos.seed("X", 120, 60, 10)

	cases := map[string]struct {
		req  dto.CrearComboRequest
		want error
	}{
		"sin componentes": {dto.CrearComboRequest{Nombre: "Vacío", Precio: dec(10)}, service.ErrValidacion},
		"precio negativo": {dto.CrearComboRequest{Nombre: "Neg", Precio: dec(-1), Items: []dto.ComboItemRequest{{ProductoID: x.ID.String(), Cantidad: 1}}}, service.ErrValidacion},
		"repetido": {dto.CrearComboRequest{Nombre: "Rep", Precio: dec(10), Items: []dto.ComboItemRequest{
			{ProductoID: x.ID.String(), Cantidad: 1}, {ProductoID: x.ID.String(), Cantidad: 2},
		}}, service.ErrValidacion},
		"producto inexistente": {dto.CrearComboRequest{Nombre: "Fantasma", Precio: dec(10), Items: []dto.ComboItemRequest{{ProductoID: uuid.NewString(), Cantidad: 1}}}, service.ErrNoEncontrado},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Crear(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCombo_ActualizarReemplazaComponentes(t *testing.T) {
	productos := newStubProductoRepo()
	repo := newStubComboRepo(productos)
	svc := service.NewComboService(repo, productos)
	x := productos.seed("X", 120, 60, 10)
	y := productos.seed("Y", 90, 30, 10)
	cb := repo.seed("Combo", 200, map[uuid.UUID]int{x.ID: 1})

	inactivo := false
	resp, err := svc.Actualizar(context.Background(), cb.ID, dto.ActualizarComboRequest{
		Nombre: "Combo Y",
		Precio: dec(150),
		Activo: &inactivo,
		Items:  []dto.ComboItemRequest{{ProductoID: y.ID.String(), Cantidad: 3}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Activo)
	assert.True(t, decimal.NewFromInt(90).Equal(resp.CostoUnitario))

	stored, _ := repo.FindByID(context.Background(), cb.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, y.ID, stored.Items[0].ProductoID)
	assert.Equal(t, 3, stored.Items[0].Cantidad)

	activos, err := svc.Listar(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, activos)
	todos, err := svc.Listar(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	_, err = svc.Actualizar(context.Background(), uuid.New(), dto.ActualizarComboRequest{Nombre: "x", Items: []dto.ComboItemRequest{{ProductoID: y.ID.String(), Cantidad: 1}}})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

// ── Reposición ────────────────────────────────────────────────────────────────

func TestReposicion_CompraIncrementaStock(t *testing.T) {
	for _, rpc := range []bool{true, false} {
		productos := newStubProductoRepo()
		repo := newStubReposicionRepo(productos, rpc)
		movs := &stubMovRepo{}
		svc := service.NewReposicionService(repo, productos, movs, model.MonedaUYU)
		p := productos.seed("Coca 1.5", 120, 80, 3)

		resp, err := svc.RegistrarCompra(context.Background(), dto.RegistrarCompraRequest{
			ProductoID: p.ID.String(), Cantidad: 12, PrecioUnitario: dec(75),
		})
		require.NoError(t, err)
		assert.Equal(t, 15, resp.StockNuevo)
		assert.Equal(t, 15, productos.stock(p.ID))
		assert.True(t, dec(900).Equal(resp.CostoTotal))
		assert.Equal(t, model.MonedaUYU, resp.Moneda)
		require.Len(t, movs.movimientos, 1)
		assert.Equal(t, model.MovimientoReposicion, movs.movimientos[0].Tipo)
		assert.Equal(t, 3, movs.movimientos[0].StockAnterior)

		_, err = svc.RegistrarCompra(context.Background(), dto.RegistrarCompraRequest{
			ProductoID: p.ID.String(), Cantidad: 1, PrecioUnitario: dec(75), Moneda: "brl",
		})
		require.NoError(t, err)
		assert.Equal(t, 16, productos.stock(p.ID))
		if !rpc {
			assert.Equal(t, 1, repo.llamadasRPC, "sin procedimiento se deja de intentar")
		}
	}
}

func TestReposicion_Fuentes(t *testing.T) {
	productos := newStubProductoRepo()
	repo := newStubReposicionRepo(productos, true)
	svc := service.NewReposicionService(repo, productos, &stubMovRepo{}, model.MonedaUYU)
	p := productos.seed("Hielo", 60, 30, 3)

	f, err := svc.CrearFuente(context.Background(), dto.CrearFuenteRequest{ProductoID: p.ID.String(), Lugar: "Mayorista Rivera", Moneda: "BRL"})
	require.NoError(t, err)
	assert.Equal(t, "BRL", f.Moneda)

	lista, err := svc.ListarFuentes(context.Background(), &p.ID)
	require.NoError(t, err)
	assert.Len(t, lista, 1)

	_, err = svc.CrearFuente(context.Background(), dto.CrearFuenteRequest{ProductoID: uuid.NewString(), Lugar: "x"})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)

	require.NoError(t, svc.EliminarFuente(context.Background(), uuid.MustParse(f.ID)))
	assert.ErrorIs(t, svc.EliminarFuente(context.Background(), uuid.MustParse(f.ID)), service.ErrNoEncontrado)
}

// ── Tasa de cambio ────────────────────────────────────────────────────────────

func TestTasaCambio(t *testing.T) {
	svc := service.NewTasaCambioService(&stubTasaRepo{}, model.MonedaUYU, model.MonedaBRL)

	_, err := svc.Obtener(context.Background())
	assert.ErrorIs(t, err, service.ErrTasaNoConfigurada)
	_, err = svc.Convertir(context.Background(), dec(10), "BRL", "UYU")
	assert.ErrorIs(t, err, service.ErrTasaNoConfigurada)

	same, err := svc.Convertir(context.Background(), dec(10), "uyu", "UYU")
	require.NoError(t, err)
	assert.True(t, dec(10).Equal(same))

	_, err = svc.Actualizar(context.Background(), dto.TasaCambioRequest{Tasa: dec(0)})
	assert.ErrorIs(t, err, service.ErrValidacion)

	resp, err := svc.Actualizar(context.Background(), dto.TasaCambioRequest{Tasa: decimal.RequireFromString("7.5")})
	require.NoError(t, err)
	assert.Equal(t, "BRL", resp.Desde)
	assert.Equal(t, "UYU", resp.Hasta)

	uyu, err := svc.Convertir(context.Background(), dec(10), "BRL", "UYU")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("75").Equal(uyu))

	brl, err := svc.Convertir(context.Background(), dec(150), "UYU", "BRL")
	require.NoError(t, err)
	assert.True(t, dec(20).Equal(brl))

	_, err = svc.Convertir(context.Background(), dec(1), "USD", "UYU")
	assert.ErrorIs(t, err, service.ErrValidacion)
}
