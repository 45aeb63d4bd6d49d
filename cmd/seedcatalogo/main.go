// cmd/seedcatalogo/main.go — Carga un catálogo de demo (productos, un combo y la tasa BRL).
// Uso: go run ./cmd/seedcatalogo
package main

import (
	"kiosco/internal/config"
	"kiosco/internal/infra"
	"kiosco/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type semilla struct {
	nombre    string
	categoria string
	precio    int64
	costo     int64
	stock     int
	minimo    int
}

var catalogo = []semilla{
	{"Agua 500ml", model.CategoriaBebidas, 60, 30, 48, 12},
	{"Coca-Cola 600ml", model.CategoriaBebidas, 110, 65, 36, 12},
	{"Monster Energy", model.CategoriaBebidas, 150, 90, 24, 6},
	{"Vaso Fernet", model.CategoriaVasos, 250, 120, 0, 0},
	{"Hielo 2kg", model.CategoriaOtros, 80, 40, 10, 4},
	{"Alfajor", model.CategoriaAlimento, 45, 20, 60, 15},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.InstalarRPC)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	var existentes int64
	if err := db.Model(&model.Producto{}).Count(&existentes).Error; err != nil {
		log.Fatal().Err(err).Msg("count error")
	}
	if existentes > 0 {
		log.Info().Int64("productos", existentes).Msg("catálogo ya cargado, nada que hacer")
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		porNombre := make(map[string]uuid.UUID, len(catalogo))
		for _, s := range catalogo {
			cat := s.categoria
			p := model.Producto{
				Nombre:      s.nombre,
				Categoria:   &cat,
				Precio:      decimal.NewFromInt(s.precio),
				Costo:       decimal.NewFromInt(s.costo),
				Stock:       s.stock,
				StockMinimo: s.minimo,
				Activo:      true,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			porNombre[s.nombre] = p.ID
		}

		combo := model.Combo{
			Nombre: "Previa (Fernet + Hielo)",
			Precio: decimal.NewFromInt(300),
			Activo: true,
			Items: []model.ComboItem{
				{ProductoID: porNombre["Vaso Fernet"], Cantidad: 1},
				{ProductoID: porNombre["Hielo 2kg"], Cantidad: 1},
			},
		}
		if err := tx.Create(&combo).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.TasaCambio{
			MonedaDesde: cfg.MonedaSecundaria,
			MonedaHasta: cfg.MonedaPrincipal,
			Tasa:        decimal.NewFromInt(8),
		}).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed error")
	}
	log.Info().Int("productos", len(catalogo)).Msg("catálogo de demo cargado")
}
