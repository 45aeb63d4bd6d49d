package worker

// observador.go: consumes VentaLiquidada events and keeps the Redis set of
// low-stock products current. Nothing here can affect a settled sale.

import (
	"context"
	"encoding/json"
	"fmt"

	"kiosco/internal/dto"
	"kiosco/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const ClaveAlertasStock = "alertas:stock"

// AlmacenAlertas holds the ids of products at or below their minimum stock.
type AlmacenAlertas interface {
	Marcar(ctx context.Context, ids ...string) error
	Desmarcar(ctx context.Context, ids ...string) error
	Reemplazar(ctx context.Context, ids []string) error
	Listar(ctx context.Context) ([]string, error)
}

// AlertasRedis stores the alert set under ClaveAlertasStock.
type AlertasRedis struct{ rdb *redis.Client }

func NewAlertasRedis(rdb *redis.Client) *AlertasRedis { return &AlertasRedis{rdb: rdb} }

func (a *AlertasRedis) Marcar(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return a.rdb.SAdd(ctx, ClaveAlertasStock, toAny(ids)...).Err()
}

func (a *AlertasRedis) Desmarcar(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return a.rdb.SRem(ctx, ClaveAlertasStock, toAny(ids)...).Err()
}

// Reemplazar swaps the whole set in one MULTI/EXEC.
func (a *AlertasRedis) Reemplazar(ctx context.Context, ids []string) error {
	_, err := a.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, ClaveAlertasStock)
		if len(ids) > 0 {
			p.SAdd(ctx, ClaveAlertasStock, toAny(ids)...)
		}
		return nil
	})
	return err
}

func (a *AlertasRedis) Listar(ctx context.Context) ([]string, error) {
	return a.rdb.SMembers(ctx, ClaveAlertasStock).Result()
}

func toAny(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// ObservadorVentas re-reads the products touched by a sale or cancellation
// and flags or unflags them in the alert set.
type ObservadorVentas struct {
	productos repository.ProductoRepository
	alertas   AlmacenAlertas
}

func NewObservadorVentas(productos repository.ProductoRepository, alertas AlmacenAlertas) *ObservadorVentas {
	return &ObservadorVentas{productos: productos, alertas: alertas}
}

func (o *ObservadorVentas) Procesar(ctx context.Context, payload json.RawMessage) error {
	var e dto.VentaLiquidadaEvento
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("%w: %v", ErrDescartar, err)
	}
	if len(e.ProductoIDs) == 0 {
		return nil
	}
	productos, err := o.productos.FindByIDs(ctx, e.ProductoIDs)
	if err != nil {
		return err
	}

	var bajos, normales []string
	for _, p := range productos {
		if p.Activo && p.BajoStock() {
			bajos = append(bajos, p.ID.String())
		} else {
			normales = append(normales, p.ID.String())
		}
	}
	if err := o.alertas.Marcar(ctx, bajos...); err != nil {
		return err
	}
	if err := o.alertas.Desmarcar(ctx, normales...); err != nil {
		return err
	}
	if len(bajos) > 0 {
		log.Info().Str("venta_id", e.VentaID.String()).Strs("productos", bajos).Bool("anulada", e.Anulada).
			Msg("observador: productos bajo stock mínimo")
	}
	return nil
}
