package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kiosco/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCierrePDF_GeneraYGuarda(t *testing.T) {
	dir := t.TempDir()
	notas := "Faltó cambio chico"
	c := &model.CierreCaja{
		ID:                 uuid.New(),
		FechaCierre:        time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC),
		Dia:                time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		TotalEfectivo:      decimal.NewFromInt(1200),
		TotalDebito:        decimal.NewFromInt(300),
		TotalTransferencia: decimal.Zero,
		TotalBRL:           decimal.NewFromInt(40),
		CantidadVentas:     18,
		MontoTotal:         decimal.NewFromInt(1500),
		Notas:              &notas,
	}

	b, err := NewCierrePDF("24 SIETE", dir, time.UTC).GenerarCierre(c)
	require.NoError(t, err)
	assert.True(t, len(b) > 100)
	assert.Equal(t, "%PDF", string(b[:4]))

	guardado, err := os.ReadFile(filepath.Join(dir, "cierre_2026-03-14.pdf"))
	require.NoError(t, err)
	assert.Equal(t, b, guardado)

	_, err = NewCierrePDF("24 SIETE", "", nil).GenerarCierre(nil)
	assert.Error(t, err)
}
