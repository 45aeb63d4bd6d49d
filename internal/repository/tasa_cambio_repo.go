package repository

import (
	"context"

	"kiosco/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TasaCambioRepository interface {
	Get(ctx context.Context, desde, hasta string) (*model.TasaCambio, error)
	// Upsert inserts or updates the rate for the (desde, hasta) pair.
	Upsert(ctx context.Context, t *model.TasaCambio) error
}

type tasaCambioRepo struct{ db *gorm.DB }

func NewTasaCambioRepository(db *gorm.DB) TasaCambioRepository { return &tasaCambioRepo{db: db} }

func (r *tasaCambioRepo) Get(ctx context.Context, desde, hasta string) (*model.TasaCambio, error) {
	var t model.TasaCambio
	err := r.db.WithContext(ctx).
		Where("currency_from = ? AND currency_to = ?", desde, hasta).
		First(&t).Error
	if err != nil {
		return nil, clasificar(err)
	}
	return &t, nil
}

func (r *tasaCambioRepo) Upsert(ctx context.Context, t *model.TasaCambio) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency_from"}, {Name: "currency_to"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(t).Error
}
