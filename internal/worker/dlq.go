package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix: a job that exhausts its attempts, or fails with ErrDescartar,
// is parked in dlq:{cola} for manual inspection. Nothing consumes it.
const DLQPrefix = "dlq:"

type EntradaDLQ struct {
	Cola     string          `json:"cola"`
	Tipo     string          `json:"tipo"`
	Payload  json.RawMessage `json:"payload"`
	Motivo   string          `json:"motivo"`
	Intentos int             `json:"intentos"`
	FalloEn  time.Time       `json:"fallo_en"`
}

// aDLQ parks job. It runs on a detached context so shutdown cannot drop it.
func aDLQ(ctx context.Context, rdb *redis.Client, cola string, job Job, motivo string) {
	data, err := json.Marshal(EntradaDLQ{
		Cola:     cola,
		Tipo:     job.Type,
		Payload:  job.Payload,
		Motivo:   motivo,
		Intentos: job.Intentos,
		FalloEn:  time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("cola", cola).Msg("dlq: entrada no serializable")
		return
	}
	clave := DLQPrefix + cola
	if err := rdb.LPush(context.WithoutCancel(ctx), clave, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq", clave).Msg("dlq: no se pudo guardar el job")
		return
	}
	log.Warn().
		Str("cola", cola).
		Str("tipo", job.Type).
		Str("motivo", motivo).
		Int("intentos", job.Intentos).
		Msg("dlq: job descartado")
}

// DLQLength returns the number of parked jobs for cola; /health reports it.
func DLQLength(ctx context.Context, rdb *redis.Client, cola string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+cola).Result()
}

// UltimosDLQ returns up to n of the most recently parked jobs.
func UltimosDLQ(ctx context.Context, rdb *redis.Client, cola string, n int64) ([]EntradaDLQ, error) {
	raws, err := rdb.LRange(ctx, DLQPrefix+cola, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]EntradaDLQ, 0, len(raws))
	for _, raw := range raws {
		var e EntradaDLQ
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
