package sii

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateRUT valida que el RUT (con o sin puntos/guion) tenga un dígito
// verificador correcto según el algoritmo módulo 11 del Registro Civil.
// rut puede ser "12.345.678-5", "12345678-5" o "123456785".
func ValidateRUT(rut string) error {
	digits, dv, err := splitRUT(rut)
	if err != nil {
		return err
	}
	expected := ComputeDV(digits)
	if dv != expected {
		return fmt.Errorf("sii: dígito verificador del RUT inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// ComputeDV calcula el dígito verificador para el cuerpo del RUT (solo dígitos,
// sin puntos ni DV). Pesos 2..7 cíclicos desde el dígito menos significativo;
// resto 11 -> '0', resto 10 -> 'K'.
func ComputeDV(digits string) byte {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

// FormatRUT normaliza el RUT a la forma "cuerpo-DV" sin puntos (la que exige
// el XML del DTE). No valida el dígito verificador.
func FormatRUT(rut string) string {
	digits, dv, err := splitRUT(rut)
	if err != nil {
		return strings.TrimSpace(rut)
	}
	return digits + "-" + string(dv)
}

// splitRUT separa cuerpo y dígito verificador ignorando puntos, guiones y espacios.
func splitRUT(rut string) (digits string, dv byte, err error) {
	var clean []byte
	for _, r := range rut {
		if unicode.IsDigit(r) {
			clean = append(clean, byte(r))
		} else if r == 'k' || r == 'K' {
			clean = append(clean, 'K')
		}
	}
	if len(clean) < 2 {
		return "", 0, fmt.Errorf("sii: RUT demasiado corto: %q", rut)
	}
	body := clean[:len(clean)-1]
	for _, c := range body {
		if c == 'K' {
			return "", 0, fmt.Errorf("sii: RUT con caracteres inválidos: %q", rut)
		}
	}
	return string(body), clean[len(clean)-1], nil
}
