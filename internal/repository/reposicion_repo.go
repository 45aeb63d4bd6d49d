package repository

import (
	"context"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReposicionRepository interface {
	CreateFuente(ctx context.Context, f *model.FuenteReposicion) error
	ListFuentes(ctx context.Context, productoID *uuid.UUID) ([]model.FuenteReposicion, error)
	DeleteFuente(ctx context.Context, id uuid.UUID) error
	CreateCompra(ctx context.Context, c *model.CompraReposicion) error
	// IncrementarStockRPC calls increment_stock and returns the new stock.
	IncrementarStockRPC(ctx context.Context, productoID uuid.UUID, cantidad int) (int, error)
}

type reposicionRepo struct{ db *gorm.DB }

func NewReposicionRepository(db *gorm.DB) ReposicionRepository { return &reposicionRepo{db: db} }

func (r *reposicionRepo) CreateFuente(ctx context.Context, f *model.FuenteReposicion) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *reposicionRepo) ListFuentes(ctx context.Context, productoID *uuid.UUID) ([]model.FuenteReposicion, error) {
	var fuentes []model.FuenteReposicion
	q := r.db.WithContext(ctx)
	if productoID != nil {
		q = q.Where("product_id = ?", *productoID)
	}
	err := q.Order("lugar ASC").Find(&fuentes).Error
	return fuentes, err
}

func (r *reposicionRepo) DeleteFuente(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.FuenteReposicion{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

func (r *reposicionRepo) CreateCompra(ctx context.Context, c *model.CompraReposicion) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *reposicionRepo) IncrementarStockRPC(ctx context.Context, productoID uuid.UUID, cantidad int) (int, error) {
	var stock int
	row := r.db.WithContext(ctx).Raw("SELECT increment_stock(?, ?)", productoID, cantidad).Row()
	if err := row.Scan(&stock); err != nil {
		return 0, clasificar(err)
	}
	return stock, nil
}
