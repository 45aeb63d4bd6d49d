package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Métodos de pago aceptados.
const (
	MetodoEfectivo      = "efectivo"
	MetodoDebito        = "debito"
	MetodoCredito       = "credito"
	MetodoTransferencia = "transferencia"
	MetodoMercadoPago   = "mercadopago"
)

var metodosPago = map[string]bool{
	MetodoEfectivo:      true,
	MetodoDebito:        true,
	MetodoCredito:       true,
	MetodoTransferencia: true,
	MetodoMercadoPago:   true,
}

// normalizarMetodo folds case, accents and spaces: "Débito" → "debito",
// "Mercado Pago" → "mercadopago".
func normalizarMetodo(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), ""))
}

func metodoValido(s string) bool { return metodosPago[normalizarMetodo(s)] }
