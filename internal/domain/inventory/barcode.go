package inventory

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-lotes/internal/domain"
)

const (
	maxMaterialCodeLen = 32
	// Prefijo GS1 200-299: uso interno de la empresa.
	internalGS1Prefix = "200"
)

// FoldAccents quita tildes y diacríticos ("Ácido cítrico" -> "Acido citrico").
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// MaterialCode deriva un código de material a partir de su nombre:
// sin tildes, en mayúsculas, con guiones entre palabras y máximo 32 caracteres.
func MaterialCode(name string) string {
	folded := strings.ToUpper(FoldAccents(name))
	var b strings.Builder
	dash := false
	for _, r := range folded {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	code := strings.TrimRight(b.String(), "-")
	if len(code) > maxMaterialCodeLen {
		code = strings.TrimRight(code[:maxMaterialCodeLen], "-")
	}
	return code
}

// EAN13 agrega el dígito de control GS1 (módulo 10) a 12 dígitos.
func EAN13(prefix12 string) (string, error) {
	if len(prefix12) != 12 || !allDigits(prefix12) {
		return "", fmt.Errorf("%w: se esperan 12 dígitos, recibido %q", domain.ErrInvalidInput, prefix12)
	}
	return prefix12 + string(rune('0'+checkDigit(prefix12))), nil
}

// ValidEAN13 verifica longitud, dígitos y dígito de control.
func ValidEAN13(code string) bool {
	if len(code) != 13 || !allDigits(code) {
		return false
	}
	return int(code[12]-'0') == checkDigit(code[:12])
}

// NewMaterialBarcode genera un EAN-13 interno (prefijo 200) a partir de un consecutivo.
func NewMaterialBarcode(seq int64) string {
	if seq < 0 {
		seq = -seq
	}
	code, _ := EAN13(fmt.Sprintf("%s%09d", internalGS1Prefix, seq%1_000_000_000))
	return code
}

// BatchBarcode arma el contenido Code-128 de un lote: CODIGO|LOTE, sin tildes ni espacios.
func BatchBarcode(materialCode, batchNumber string) string {
	clean := func(s string) string {
		s = strings.ToUpper(FoldAccents(strings.TrimSpace(s)))
		return strings.Join(strings.Fields(s), "")
	}
	return clean(materialCode) + "|" + clean(batchNumber)
}

func checkDigit(digits12 string) int {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(digits12[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
