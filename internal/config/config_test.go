package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9100")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "UYU", cfg.MonedaPrincipal)
	assert.Equal(t, "BRL", cfg.MonedaSecundaria)
	assert.Equal(t, StockRespaldoSnapshot, cfg.StockRespaldoModo)
	assert.False(t, cfg.CierreExcluirAnuladas)
	assert.True(t, cfg.InstalarRPC)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
}

func TestLoad_ModoRespaldoInvalido(t *testing.T) {
	t.Setenv("STOCK_RESPALDO_MODO", "optimista")
	_, err := Load()
	assert.ErrorContains(t, err, "STOCK_RESPALDO_MODO")
}

func TestLocation_FallbackLocal(t *testing.T) {
	cfg := &Config{ZonaHoraria: "Nowhere/Invalid"}
	assert.Equal(t, time.Local, cfg.Location())
}
