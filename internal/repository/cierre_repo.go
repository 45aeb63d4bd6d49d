package repository

import (
	"context"
	"time"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CierreRepository interface {
	// ExisteEntre reports whether a closing was recorded in [desde, hasta).
	ExisteEntre(ctx context.Context, desde, hasta time.Time) (bool, error)
	// Create returns ErrDuplicado when the day already has a closing.
	Create(ctx context.Context, c *model.CierreCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	FindEntre(ctx context.Context, desde, hasta time.Time) (*model.CierreCaja, error)
	ListRecientes(ctx context.Context, limit int) ([]model.CierreCaja, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) ExisteEntre(ctx context.Context, desde, hasta time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CierreCaja{}).
		Where("fecha_cierre >= ? AND fecha_cierre < ?", desde, hasta).
		Count(&n).Error
	return n > 0, err
}

func (r *cierreRepo) Create(ctx context.Context, c *model.CierreCaja) error {
	return clasificar(r.db.WithContext(ctx).Create(c).Error)
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, clasificar(err)
	}
	return &c, nil
}

func (r *cierreRepo) FindEntre(ctx context.Context, desde, hasta time.Time) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("fecha_cierre >= ? AND fecha_cierre < ?", desde, hasta).
		Order("fecha_cierre DESC").
		First(&c).Error
	if err != nil {
		return nil, clasificar(err)
	}
	return &c, nil
}

func (r *cierreRepo) ListRecientes(ctx context.Context, limit int) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).Order("fecha_cierre DESC").Limit(limit).Find(&cierres).Error
	return cierres, err
}
