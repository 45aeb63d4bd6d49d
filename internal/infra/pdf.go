package infra

// pdf.go renders the daily cash-register closing with go-pdf/fpdf: an A5
// sheet with the day, the totals per payment bucket, the BRL bucket apart from
// the UYU total, the sale count and the cashier's notes.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kiosco/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// CierrePDF implements service.GeneradorPDF.
type CierrePDF struct {
	negocio string
	dir     string
	loc     *time.Location
}

// NewCierrePDF builds a renderer. When dir is not empty every rendered closing
// is also written to dir/cierre_<dia>.pdf.
func NewCierrePDF(negocio, dir string, loc *time.Location) *CierrePDF {
	if loc == nil {
		loc = time.Local
	}
	return &CierrePDF{negocio: negocio, dir: dir, loc: loc}
}

func (g *CierrePDF) GenerarCierre(c *model.CierreCaja) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("pdf: cierre nulo")
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(g.negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Cierre de caja"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, tr("Día: "+c.Dia.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Cerrado: "+c.FechaCierre.In(g.loc).Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	etiqueta := contentW * 0.6
	monto := contentW * 0.4
	fila := func(nombre string, valor decimal.Decimal, prefijo string) {
		pdf.CellFormat(etiqueta, 6, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(monto, 6, prefijo+valor.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
	fila("Efectivo", c.TotalEfectivo, "$ ")
	fila("Débito", c.TotalDebito, "$ ")
	fila("Transferencia", c.TotalTransferencia, "$ ")
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 11)
	fila("TOTAL UYU", c.MontoTotal, "$ ")
	pdf.SetFont("Helvetica", "", 10)
	fila("Reales (BRL)", c.TotalBRL, "R$ ")
	pdf.Ln(2)
	pdf.CellFormat(etiqueta, 6, "Cantidad de ventas", "", 0, "L", false, 0, "")
	pdf.CellFormat(monto, 6, fmt.Sprintf("%d", c.CantidadVentas), "", 1, "R", false, 0, "")

	if c.Notas != nil && *c.Notas != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Notas: "+*c.Notas), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}

	if g.dir != "" {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			return nil, fmt.Errorf("pdf: create storage dir: %w", err)
		}
		ruta := filepath.Join(g.dir, "cierre_"+c.Dia.Format("2006-01-02")+".pdf")
		if err := os.WriteFile(ruta, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("pdf: write file: %w", err)
		}
	}
	return buf.Bytes(), nil
}
