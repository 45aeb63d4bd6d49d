package carrito_test

import (
	"testing"

	"kiosco/internal/carrito"
	"kiosco/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recargos = carrito.Recargos{
	ShotExtra: decimal.NewFromInt(50),
	Monster:   decimal.NewFromInt(100),
}

func producto(nombre string, precio int64, stock int) model.Producto {
	return model.Producto{
		ID:     uuid.New(),
		Nombre: nombre,
		Precio: decimal.NewFromInt(precio),
		Costo:  decimal.NewFromInt(precio / 2),
		Stock:  stock,
		Activo: true,
	}
}

func vaso(nombre string, precio int64, stock int) model.Producto {
	p := producto(nombre, precio, stock)
	cat := model.CategoriaVasos
	p.Categoria = &cat
	return p
}

func combo(nombre string, precio int64, comps map[*model.Producto]int) model.Combo {
	c := model.Combo{ID: uuid.New(), Nombre: nombre, Precio: decimal.NewFromInt(precio), Activo: true}
	for p, n := range comps {
		c.Items = append(c.Items, model.ComboItem{ComboID: c.ID, ProductoID: p.ID, Cantidad: n, Producto: p})
	}
	return c
}

// ── Productos ─────────────────────────────────────────────────────────────────

func TestAgregarProducto_FusionaYRespetaStock(t *testing.T) {
	c := carrito.Nuevo(recargos)
	p := producto("Agua", 40, 2)

	id1, err := c.AgregarProducto(p)
	require.NoError(t, err)
	id2, err := c.AgregarProducto(p)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	_, err = c.AgregarProducto(p)
	assert.ErrorIs(t, err, carrito.ErrSinStock)
	require.Len(t, c.Lineas(), 1)
	assert.Equal(t, 2, c.Lineas()[0].Cantidad)
}

func TestAgregarProducto_SinStock(t *testing.T) {
	c := carrito.Nuevo(recargos)
	_, err := c.AgregarProducto(producto("Chicle", 10, 0))
	assert.ErrorIs(t, err, carrito.ErrSinStock)
	assert.True(t, c.Vacio())
}

func TestSetCantidad_MinimoUnoYTopeStock(t *testing.T) {
	c := carrito.Nuevo(recargos)
	id, err := c.AgregarProducto(producto("Alfajor", 30, 4))
	require.NoError(t, err)

	n, err := c.SetCantidad(id, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = c.SetCantidad(id, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = c.SetCantidad(999, 2)
	assert.ErrorIs(t, err, carrito.ErrLineaNoEncontrada)
}

func TestSetPrecio_NoNegativo(t *testing.T) {
	c := carrito.Nuevo(recargos)
	id, _ := c.AgregarProducto(producto("Café", 60, 5))

	assert.ErrorIs(t, c.SetPrecio(id, decimal.NewFromInt(-1)), carrito.ErrPrecioInvalido)
	require.NoError(t, c.SetPrecio(id, decimal.Zero))
	assert.True(t, c.Total().IsZero())
}

func TestQuitar(t *testing.T) {
	c := carrito.Nuevo(recargos)
	id, _ := c.AgregarProducto(producto("Café", 60, 5))
	require.NoError(t, c.Quitar(id))
	assert.True(t, c.Vacio())
	assert.ErrorIs(t, c.Quitar(id), carrito.ErrLineaNoEncontrada)
}

// ── Recargos ──────────────────────────────────────────────────────────────────

func TestRecargos_NoSonUnidades(t *testing.T) {
	c := carrito.Nuevo(recargos)
	v := vaso("Vaso Fernet", 200, 10)
	id, _ := c.AgregarProducto(v)
	_, err := c.SetCantidad(id, 2)
	require.NoError(t, err)

	require.NoError(t, c.ToggleShotExtra(id))
	require.NoError(t, c.ToggleMonster(id))

	// 2×200 + 50 (shot, por línea) + 2×100 (monster, por unidad)
	assert.True(t, decimal.NewFromInt(650).Equal(c.Total()))

	items, combos := c.Expandir()
	require.Len(t, items, 1)
	assert.Empty(t, combos)
	assert.Equal(t, 2, items[0].Cantidad)
	assert.True(t, decimal.NewFromInt(250).Equal(items[0].Recargo))
}

func TestToggleMonster_SoloVasos(t *testing.T) {
	c := carrito.Nuevo(recargos)
	id, _ := c.AgregarProducto(producto("Coca", 80, 3))
	assert.ErrorIs(t, c.ToggleMonster(id), carrito.ErrMonsterNoAplica)
}

// ── Combos ────────────────────────────────────────────────────────────────────

func TestAgregarCombo_StockInsuficienteNombraProducto(t *testing.T) {
	a := producto("Hielo", 20, 1)
	cb := combo("Previa", 300, map[*model.Producto]int{&a: 2})

	c := carrito.Nuevo(recargos)
	_, err := c.AgregarCombo(cb)
	assert.ErrorIs(t, err, carrito.ErrStockInsuficienteCombo)
	assert.ErrorContains(t, err, "Hielo")
}

func TestAgregarCombo_Vacio(t *testing.T) {
	c := carrito.Nuevo(recargos)
	_, err := c.AgregarCombo(model.Combo{ID: uuid.New(), Nombre: "Nada"})
	assert.ErrorIs(t, err, carrito.ErrComboVacio)
}

func TestExpandir_ComboMasLineaSimple(t *testing.T) {
	x := producto("X", 100, 10)
	y := producto("Y", 80, 10)
	z := producto("Z", 50, 10)
	cb := combo("Combo XY", 300, map[*model.Producto]int{&x: 1, &y: 2})

	c := carrito.Nuevo(recargos)
	_, err := c.AgregarCombo(cb)
	require.NoError(t, err)
	idZ, err := c.AgregarProducto(z)
	require.NoError(t, err)
	_, err = c.SetCantidad(idZ, 3)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(450).Equal(c.Total()))

	items, combos := c.Expandir()
	require.Len(t, items, 3)
	porProducto := map[uuid.UUID]model.VentaItem{}
	for _, it := range items {
		porProducto[it.ProductoID] = it
	}
	assert.Equal(t, 1, porProducto[x.ID].Cantidad)
	assert.True(t, porProducto[x.ID].PrecioUnitario.IsZero())
	require.NotNil(t, porProducto[x.ID].ComboID)
	assert.Equal(t, cb.ID, *porProducto[x.ID].ComboID)
	assert.Equal(t, 2, porProducto[y.ID].Cantidad)
	assert.True(t, porProducto[y.ID].PrecioUnitario.IsZero())
	assert.Equal(t, 3, porProducto[z.ID].Cantidad)
	assert.True(t, decimal.NewFromInt(50).Equal(porProducto[z.ID].PrecioUnitario))
	assert.Nil(t, porProducto[z.ID].ComboID)

	require.Len(t, combos, 1)
	assert.Equal(t, "Combo XY", combos[0].Nombre)
	assert.Equal(t, 1, combos[0].Cantidad)
	assert.True(t, decimal.NewFromInt(300).Equal(combos[0].PrecioUnitario))
	// costo = 1×50 + 2×40
	assert.True(t, decimal.NewFromInt(130).Equal(combos[0].CostoUnitario))
}

func TestExpandir_ComboMultiplicaCantidades(t *testing.T) {
	a := producto("A", 10, 10)
	b := producto("B", 10, 10)
	cb := combo("AB", 100, map[*model.Producto]int{&a: 2, &b: 1})

	c := carrito.Nuevo(recargos)
	id, err := c.AgregarCombo(cb)
	require.NoError(t, err)
	_, err = c.AgregarCombo(cb)
	require.NoError(t, err)
	require.NoError(t, c.ToggleShotExtra(id))

	items, combos := c.Expandir()
	total := map[uuid.UUID]int{}
	for _, it := range items {
		total[it.ProductoID] += it.Cantidad
		assert.True(t, it.Recargo.IsZero())
	}
	assert.Equal(t, 4, total[a.ID])
	assert.Equal(t, 2, total[b.ID])

	require.Len(t, combos, 1)
	assert.Equal(t, 2, combos[0].Cantidad)
	// 100 + 50/2 por unidad
	assert.True(t, decimal.NewFromInt(125).Equal(combos[0].PrecioUnitario))
	assert.True(t, decimal.NewFromInt(250).Equal(c.Total()))
}

func TestExpandir_ProductoEnComboYLineaSimpleArrastraStock(t *testing.T) {
	x := producto("X", 100, 10)
	y := producto("Y", 80, 10)
	cb := combo("Combo XY", 150, map[*model.Producto]int{&x: 1, &y: 1})

	c := carrito.Nuevo(recargos)
	_, err := c.AgregarCombo(cb)
	require.NoError(t, err)
	idX, err := c.AgregarProducto(x)
	require.NoError(t, err)
	_, err = c.SetCantidad(idX, 2)
	require.NoError(t, err)

	items, _ := c.Expandir()
	require.Len(t, items, 3)
	var deX []model.VentaItem
	for _, it := range items {
		if it.ProductoID == x.ID {
			deX = append(deX, it)
		}
	}
	require.Len(t, deX, 2)
	assert.Equal(t, 10, deX[0].StockCapturado)
	assert.Equal(t, 1, deX[0].Cantidad)
	assert.Equal(t, 9, deX[1].StockCapturado, "second item starts from what the first one left")
	assert.Equal(t, 2, deX[1].Cantidad)
}

func TestIDsDeLinea_SonLocalesAlCarrito(t *testing.T) {
	p := producto("P", 10, 5)
	id1, _ := carrito.Nuevo(recargos).AgregarProducto(p)
	id2, _ := carrito.Nuevo(recargos).AgregarProducto(p)
	assert.Equal(t, id1, id2)
}
