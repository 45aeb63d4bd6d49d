package repository

import (
	"context"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComboRepository interface {
	CreateTx(tx *gorm.DB, c *model.Combo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Combo, error)
	List(ctx context.Context, soloActivos bool) ([]model.Combo, error)
	UpdateHeaderTx(tx *gorm.DB, c *model.Combo) error
	// ReplaceItemsTx deletes every component of the combo and inserts items.
	ReplaceItemsTx(tx *gorm.DB, comboID uuid.UUID, items []model.ComboItem) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type comboRepo struct{ db *gorm.DB }

func NewComboRepository(db *gorm.DB) ComboRepository { return &comboRepo{db: db} }

func (r *comboRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the combo and its components; preloaded products are not written.
func (r *comboRepo) CreateTx(tx *gorm.DB, c *model.Combo) error {
	if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
		return err
	}
	for i := range c.Items {
		c.Items[i].ComboID = c.ID
	}
	if len(c.Items) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&c.Items).Error
}

func (r *comboRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Combo, error) {
	var c model.Combo
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, clasificar(err)
	}
	return &c, nil
}

func (r *comboRepo) List(ctx context.Context, soloActivos bool) ([]model.Combo, error) {
	var combos []model.Combo
	q := r.db.WithContext(ctx).Preload("Items.Producto")
	if soloActivos {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&combos).Error
	return combos, err
}

func (r *comboRepo) UpdateHeaderTx(tx *gorm.DB, c *model.Combo) error {
	res := tx.Model(&model.Combo{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"nombre": c.Nombre,
		"precio": c.Precio,
		"activo": c.Activo,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}

func (r *comboRepo) ReplaceItemsTx(tx *gorm.DB, comboID uuid.UUID, items []model.ComboItem) error {
	if err := tx.Where("combo_id = ?", comboID).Delete(&model.ComboItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ComboID = comboID
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func (r *comboRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Combo{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}
