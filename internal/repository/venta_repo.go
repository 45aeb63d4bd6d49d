package repository

import (
	"context"
	"encoding/json"
	"time"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaFiltro selects sales by [Desde, Hasta) and estado ("" or "all" = any).
type VentaFiltro struct {
	Desde  time.Time
	Hasta  time.Time
	Estado string
	Page   int
	Limit  int
}

type VentaRepository interface {
	// SoportaRPC reports whether create_sale_atomic and cancel_sale_atomic are installed.
	SoportaRPC(ctx context.Context) (bool, error)
	// CrearAtomica persists header, items, combos and stock decrements in one
	// database transaction via create_sale_atomic.
	CrearAtomica(ctx context.Context, v *model.Venta) (uuid.UUID, error)
	// AnularAtomica flips the state and restores stock via cancel_sale_atomic.
	AnularAtomica(ctx context.Context, id uuid.UUID) error

	CreateHeader(ctx context.Context, v *model.Venta) error
	CreateItems(ctx context.Context, items []model.VentaItem) error
	CreateCombos(ctx context.Context, combos []model.VentaCombo) error
	DeleteHeader(ctx context.Context, id uuid.UUID) error
	// UpdateEstado moves a sale from estado desde to hasta; false when no row matched.
	UpdateEstado(ctx context.Context, id uuid.UUID, desde, hasta string) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByClave(ctx context.Context, clave string) (*model.Venta, error)
	ListItems(ctx context.Context, ventaID uuid.UUID) ([]model.VentaItem, error)
	// ListEntre returns sales with items and combo summaries, oldest first.
	ListEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	List(ctx context.Context, filtro VentaFiltro) ([]model.Venta, int64, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) SoportaRPC(ctx context.Context) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Raw("SELECT count(DISTINCT proname) FROM pg_proc WHERE proname IN ('create_sale_atomic', 'cancel_sale_atomic')").
		Scan(&n).Error
	return n == 2, err
}

// rpcItem / rpcCombo are the jsonb element shapes read by create_sale_atomic.
type rpcItem struct {
	ProductoID     uuid.UUID       `json:"product_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Recargo        decimal.Decimal `json:"recargo"`
	ComboID        *uuid.UUID      `json:"combo_id"`
}

type rpcCombo struct {
	ComboID        uuid.UUID       `json:"combo_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
}

func (r *ventaRepo) CrearAtomica(ctx context.Context, v *model.Venta) (uuid.UUID, error) {
	items := make([]rpcItem, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, rpcItem{
			ProductoID:     it.ProductoID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Recargo:        it.Recargo,
			ComboID:        it.ComboID,
		})
	}
	combos := make([]rpcCombo, 0, len(v.Combos))
	for _, c := range v.Combos {
		combos = append(combos, rpcCombo{
			ComboID:        c.ComboID,
			Nombre:         c.Nombre,
			Cantidad:       c.Cantidad,
			PrecioUnitario: c.PrecioUnitario,
			CostoUnitario:  c.CostoUnitario,
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return uuid.Nil, err
	}
	combosJSON, err := json.Marshal(combos)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	row := r.db.WithContext(ctx).Raw(
		"SELECT create_sale_atomic(?, ?, ?, ?, ?, ?::jsonb, ?::jsonb)",
		v.MetodoPago, v.Total, v.Nota, v.Moneda, v.ClaveIdempotencia, string(itemsJSON), string(combosJSON),
	).Row()
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, clasificar(err)
	}
	return id, nil
}

func (r *ventaRepo) AnularAtomica(ctx context.Context, id uuid.UUID) error {
	return clasificar(r.db.WithContext(ctx).Exec("SELECT cancel_sale_atomic(?)", id).Error)
}

func (r *ventaRepo) CreateHeader(ctx context.Context, v *model.Venta) error {
	return clasificar(r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error)
}

func (r *ventaRepo) CreateItems(ctx context.Context, items []model.VentaItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *ventaRepo) CreateCombos(ctx context.Context, combos []model.VentaCombo) error {
	if len(combos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&combos).Error
}

func (r *ventaRepo) DeleteHeader(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Venta{}, "id = ?", id).Error
}

func (r *ventaRepo) UpdateEstado(ctx context.Context, id uuid.UUID, desde, hasta string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, desde).
		Update("estado", hasta)
	return res.RowsAffected > 0, res.Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Combos").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, clasificar(err)
	}
	return &v, nil
}

func (r *ventaRepo) FindByClave(ctx context.Context, clave string) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Where("clave_idempotencia = ?", clave).First(&v).Error
	if err != nil {
		return nil, clasificar(err)
	}
	return &v, nil
}

func (r *ventaRepo) ListItems(ctx context.Context, ventaID uuid.UUID) ([]model.VentaItem, error) {
	var items []model.VentaItem
	err := r.db.WithContext(ctx).Where("sale_id = ?", ventaID).Find(&items).Error
	return items, err
}

func (r *ventaRepo) ListEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Combos").
		Where("fecha >= ? AND fecha < ?", desde, hasta).
		Order("fecha ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) List(ctx context.Context, filtro VentaFiltro) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filtro.Page - 1) * filtro.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("fecha >= ? AND fecha < ?", filtro.Desde, filtro.Hasta)
	if filtro.Estado != "" && filtro.Estado != "all" {
		q = q.Where("estado = ?", filtro.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").Preload("Combos").
		Order("fecha DESC").
		Offset(offset).Limit(filtro.Limit).
		Find(&ventas).Error

	return ventas, total, err
}
