//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"kiosco/internal/dto"
	"kiosco/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func redisDePrueba(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	c, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type procesadorFunc func(ctx context.Context, payload json.RawMessage) error

func (f procesadorFunc) Procesar(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

func TestPool_EntregaEventoYReintentaHastaDLQ(t *testing.T) {
	rdb := redisDePrueba(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recibidos := make(chan dto.VentaLiquidadaEvento, 1)
	var intentosEmail atomic.Int32

	pool := NewPool(rdb)
	pool.Registrar(QueueVentas, TipoVentaLiquidada, procesadorFunc(func(_ context.Context, p json.RawMessage) error {
		var e dto.VentaLiquidadaEvento
		assert.NoError(t, json.Unmarshal(p, &e))
		recibidos <- e
		return nil
	}))
	pool.Registrar(QueueEmail, TipoEmailCierre, procesadorFunc(func(context.Context, json.RawMessage) error {
		intentosEmail.Add(1)
		return errors.New("smtp caído")
	}))
	pool.Start(ctx, 2)

	d := NewDispatcher(rdb)
	ventaID := uuid.New()
	require.NoError(t, d.PublicarVentaLiquidada(ctx, dto.VentaLiquidadaEvento{VentaID: ventaID}))
	require.NoError(t, d.EncolarEmailCierre(ctx, dto.EmailCierreJob{CierreID: uuid.New(), Destino: "x@y.uy"}))

	select {
	case e := <-recibidos:
		assert.Equal(t, ventaID, e.VentaID)
	case <-time.After(10 * time.Second):
		t.Fatal("evento no procesado")
	}

	require.Eventually(t, func() bool {
		n, _ := DLQLength(ctx, rdb, QueueEmail)
		return n == 1
	}, 20*time.Second, 100*time.Millisecond)
	assert.Equal(t, int32(maxIntentos), intentosEmail.Load())

	parked, err := UltimosDLQ(ctx, rdb, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, parked, 1)
	assert.Equal(t, TipoEmailCierre, parked[0].Tipo)
	assert.Equal(t, "smtp caído", parked[0].Motivo)
	assert.Equal(t, maxIntentos, parked[0].Intentos)

	cancel()
	pool.Wait()
}

func TestAlertasRedis_Conjunto(t *testing.T) {
	rdb := redisDePrueba(t)
	ctx := context.Background()
	a := NewAlertasRedis(rdb)

	require.NoError(t, a.Marcar(ctx, "p1", "p2"))
	require.NoError(t, a.Desmarcar(ctx, "p1"))
	ids, err := a.Listar(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids)

	require.NoError(t, a.Reemplazar(ctx, []string{"p3"}))
	ids, err = a.Listar(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, ids)

	require.NoError(t, a.Reemplazar(ctx, nil))
	ids, err = a.Listar(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
