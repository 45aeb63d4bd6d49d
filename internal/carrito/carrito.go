// Package carrito builds the in-memory cart composed at the till and expands it
// into the settlement input: one sale item per plain line, one zero-priced item
// per combo component, and a priced summary per combo line.
package carrito

import (
	"errors"
	"fmt"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSinStock               = errors.New("sin stock disponible")
	ErrStockInsuficienteCombo = errors.New("stock insuficiente")
	ErrComboVacio             = errors.New("el combo no tiene productos")
	ErrLineaNoEncontrada      = errors.New("línea no encontrada en el carrito")
	ErrPrecioInvalido         = errors.New("el precio no puede ser negativo")
	ErrMonsterNoAplica        = errors.New("el recargo Monster solo aplica a vasos")
)

// Recargos are the fixed add-on amounts. ShotExtra is charged once per line,
// Monster once per unit.
type Recargos struct {
	ShotExtra decimal.Decimal
	Monster   decimal.Decimal
}

// Linea is one cart line: a product line (Producto set) or a combo line (Combo set).
type Linea struct {
	ID       int
	Producto *model.Producto
	Combo    *model.Combo
	Cantidad int
	// Precio is the unit price charged; starts at the catalog price and may be edited.
	Precio    decimal.Decimal
	ShotExtra bool
	Monster   bool
}

func (l Linea) EsCombo() bool { return l.Combo != nil }

// Recargo is the add-on surcharge of the line. It never counts as units sold.
func (l Linea) Recargo(r Recargos) decimal.Decimal {
	total := decimal.Zero
	if l.ShotExtra {
		total = total.Add(r.ShotExtra)
	}
	if l.Monster && !l.EsCombo() {
		total = total.Add(r.Monster.Mul(decimal.NewFromInt(int64(l.Cantidad))))
	}
	return total
}

// Subtotal is Precio × Cantidad plus surcharges.
func (l Linea) Subtotal(r Recargos) decimal.Decimal {
	return l.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad))).Add(l.Recargo(r))
}

// Carrito is not safe for concurrent use; each till request owns its own.
type Carrito struct {
	recargos  Recargos
	lineas    []Linea
	siguiente int
}

func Nuevo(r Recargos) *Carrito { return &Carrito{recargos: r} }

func (c *Carrito) Lineas() []Linea { return append([]Linea(nil), c.lineas...) }

func (c *Carrito) Vacio() bool { return len(c.lineas) == 0 }

func (c *Carrito) nuevoID() int {
	c.siguiente++
	return c.siguiente
}

func (c *Carrito) buscar(id int) (int, error) {
	for i := range c.lineas {
		if c.lineas[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrLineaNoEncontrada
}

// AgregarProducto adds one unit of p, merging with an existing line of the same
// product. The quantity never exceeds the stock observed in p.
func (c *Carrito) AgregarProducto(p model.Producto) (int, error) {
	if p.Stock <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrSinStock, p.Nombre)
	}
	for i := range c.lineas {
		l := &c.lineas[i]
		if l.Producto != nil && l.Producto.ID == p.ID {
			if l.Cantidad >= l.Producto.Stock {
				return l.ID, fmt.Errorf("%w: %q (máximo %d)", ErrSinStock, p.Nombre, l.Producto.Stock)
			}
			l.Cantidad++
			return l.ID, nil
		}
	}
	prod := p
	id := c.nuevoID()
	c.lineas = append(c.lineas, Linea{ID: id, Producto: &prod, Cantidad: 1, Precio: p.Precio})
	return id, nil
}

// AgregarCombo adds one unit of combo. Every component must have stock for the
// resulting line quantity; the check runs against the snapshot in combo.Items
// and is not repeated at settlement.
func (c *Carrito) AgregarCombo(combo model.Combo) (int, error) {
	if len(combo.Items) == 0 {
		return 0, ErrComboVacio
	}
	idx := -1
	cantidad := 1
	for i := range c.lineas {
		if c.lineas[i].Combo != nil && c.lineas[i].Combo.ID == combo.ID {
			idx = i
			cantidad = c.lineas[i].Cantidad + 1
			break
		}
	}
	for _, it := range combo.Items {
		if it.Producto == nil {
			return 0, fmt.Errorf("%w: componente %s sin datos", ErrStockInsuficienteCombo, it.ProductoID)
		}
		if it.Producto.Stock < it.Cantidad*cantidad {
			return 0, fmt.Errorf("%w para %q", ErrStockInsuficienteCombo, it.Producto.Nombre)
		}
	}
	if idx >= 0 {
		c.lineas[idx].Cantidad = cantidad
		return c.lineas[idx].ID, nil
	}
	cb := combo
	id := c.nuevoID()
	c.lineas = append(c.lineas, Linea{ID: id, Combo: &cb, Cantidad: 1, Precio: combo.Precio})
	return id, nil
}

func (c *Carrito) Quitar(id int) error {
	i, err := c.buscar(id)
	if err != nil {
		return err
	}
	c.lineas = append(c.lineas[:i], c.lineas[i+1:]...)
	return nil
}

// SetCantidad sets the line quantity to at least 1; product lines are capped at
// the captured stock. Returns the quantity actually applied.
func (c *Carrito) SetCantidad(id, cantidad int) (int, error) {
	i, err := c.buscar(id)
	if err != nil {
		return 0, err
	}
	l := &c.lineas[i]
	if cantidad < 1 {
		cantidad = 1
	}
	if l.Producto != nil && cantidad > l.Producto.Stock {
		cantidad = l.Producto.Stock
	}
	l.Cantidad = cantidad
	return cantidad, nil
}

func (c *Carrito) SetPrecio(id int, precio decimal.Decimal) error {
	if precio.IsNegative() {
		return ErrPrecioInvalido
	}
	i, err := c.buscar(id)
	if err != nil {
		return err
	}
	c.lineas[i].Precio = precio
	return nil
}

func (c *Carrito) ToggleShotExtra(id int) error {
	i, err := c.buscar(id)
	if err != nil {
		return err
	}
	c.lineas[i].ShotExtra = !c.lineas[i].ShotExtra
	return nil
}

func (c *Carrito) ToggleMonster(id int) error {
	i, err := c.buscar(id)
	if err != nil {
		return err
	}
	l := &c.lineas[i]
	if l.Producto == nil || !l.Producto.EsVaso() {
		return ErrMonsterNoAplica
	}
	l.Monster = !l.Monster
	return nil
}

func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lineas {
		total = total.Add(l.Subtotal(c.recargos))
	}
	return total
}

// Expandir converts the cart into sale items and combo summaries. Combo lines
// yield one zero-priced item per component with quantity component × line;
// the combo revenue is carried by its summary.
//
// A product reached by more than one line (plain and as a combo component)
// keeps the stock captured by its first line; every later item captures that
// stock minus what earlier items of the same sale already took.
func (c *Carrito) Expandir() ([]model.VentaItem, []model.VentaCombo) {
	var items []model.VentaItem
	var combos []model.VentaCombo
	capturado := make(map[uuid.UUID]int)
	capturar := func(id uuid.UUID, stock, cantidad int) int {
		previo, ok := capturado[id]
		if !ok {
			previo = stock
		}
		capturado[id] = max(0, previo-cantidad)
		return previo
	}
	for _, l := range c.lineas {
		if l.Producto != nil {
			items = append(items, model.VentaItem{
				ProductoID:     l.Producto.ID,
				Cantidad:       l.Cantidad,
				PrecioUnitario: l.Precio,
				Recargo:        l.Recargo(c.recargos),
				StockCapturado: capturar(l.Producto.ID, l.Producto.Stock, l.Cantidad),
			})
			continue
		}
		comboID := l.Combo.ID
		for _, it := range l.Combo.Items {
			stock := 0
			if it.Producto != nil {
				stock = it.Producto.Stock
			}
			cantidad := it.Cantidad * l.Cantidad
			items = append(items, model.VentaItem{
				ProductoID:     it.ProductoID,
				Cantidad:       cantidad,
				PrecioUnitario: decimal.Zero,
				Recargo:        decimal.Zero,
				ComboID:        ptrUUID(comboID),
				StockCapturado: capturar(it.ProductoID, stock, cantidad),
			})
		}
		unidades := decimal.NewFromInt(int64(l.Cantidad))
		combos = append(combos, model.VentaCombo{
			ComboID:        comboID,
			Nombre:         l.Combo.Nombre,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.Precio.Add(l.Recargo(c.recargos).Div(unidades)).Round(2),
			CostoUnitario:  l.Combo.CostoUnitario(),
		})
	}
	return items, combos
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
