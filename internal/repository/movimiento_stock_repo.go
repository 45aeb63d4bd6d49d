package repository

import (
	"context"
	"time"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockFiltro narrows the audit trail. Desde/Hasta bound created_at
// as a half-open interval.
type MovimientoStockFiltro struct {
	ProductoID   *uuid.UUID
	ReferenciaID *uuid.UUID
	Tipo         string
	Desde        *time.Time
	Hasta        *time.Time
	Page         int
	Limit        int
}

// MovimientoStockRepository is append-only: audit rows are never updated.
type MovimientoStockRepository interface {
	Create(ctx context.Context, m *model.MovimientoStock) error
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, f MovimientoStockFiltro) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) Create(ctx context.Context, m *model.MovimientoStock) error {
	return r.CreateTx(r.db.WithContext(ctx), m)
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) List(ctx context.Context, f MovimientoStockFiltro) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if f.ProductoID != nil {
		q = q.Where("producto_id = ?", *f.ProductoID)
	}
	if f.ReferenciaID != nil {
		q = q.Where("referencia_id = ?", *f.ReferenciaID)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Desde != nil {
		q = q.Where("created_at >= ?", *f.Desde)
	}
	if f.Hasta != nil {
		q = q.Where("created_at < ?", *f.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movimientos []model.MovimientoStock
	err := q.Order("created_at DESC, id").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&movimientos).Error
	return movimientos, total, err
}
