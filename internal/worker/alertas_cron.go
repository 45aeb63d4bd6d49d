package worker

// alertas_cron.go: periodic full rebuild of the low-stock alert set. Events
// only touch the products of one sale; manual adjustments, restocks and lost
// events are reconciled here.

import (
	"context"
	"time"

	"kiosco/internal/repository"

	"github.com/rs/zerolog/log"
)

const resyncIntervalo = 5 * time.Minute

type AlertasCronConfig struct {
	Productos repository.ProductoRepository
	Alertas   AlmacenAlertas
	Intervalo time.Duration
}

// StartAlertasCron rebuilds the set once immediately, then on every tick until
// ctx is cancelled.
func StartAlertasCron(ctx context.Context, cfg AlertasCronConfig) {
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = resyncIntervalo
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("alertas_cron: iniciado")
		SincronizarAlertas(ctx, cfg)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alertas_cron: detenido")
				return
			case <-ticker.C:
				SincronizarAlertas(ctx, cfg)
			}
		}
	}()
}

// SincronizarAlertas replaces the alert set with the catalog's current view.
func SincronizarAlertas(ctx context.Context, cfg AlertasCronConfig) {
	productos, err := cfg.Productos.ListBajoStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alertas_cron: no se pudo leer el catálogo")
		return
	}
	ids := make([]string, 0, len(productos))
	for _, p := range productos {
		ids = append(ids, p.ID.String())
	}
	if err := cfg.Alertas.Reemplazar(ctx, ids); err != nil {
		log.Error().Err(err).Msg("alertas_cron: no se pudo actualizar el conjunto")
		return
	}
	log.Debug().Int("productos", len(ids)).Msg("alertas_cron: conjunto sincronizado")
}
