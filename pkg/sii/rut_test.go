package sii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDV(t *testing.T) {
	cases := []struct {
		digits string
		want   byte
	}{
		{"12345678", '5'},
		{"11111111", '1'},
		{"6", 'K'},  // resto 10 -> K
		{"14", '0'}, // resto 11 -> 0
	}
	for _, c := range cases {
		assert.Equal(t, string(c.want), string(ComputeDV(c.digits)),
			"dígito verificador incorrecto para cuerpo %s", c.digits)
	}
}

func TestValidateRUT(t *testing.T) {
	t.Run("acepta formatos con puntos y guion", func(t *testing.T) {
		assert.NoError(t, ValidateRUT("12.345.678-5"))
		assert.NoError(t, ValidateRUT("12345678-5"))
		assert.NoError(t, ValidateRUT("123456785"))
	})

	t.Run("acepta dígito verificador K en minúscula", func(t *testing.T) {
		assert.NoError(t, ValidateRUT("6-k"))
	})

	t.Run("rechaza dígito verificador incorrecto", func(t *testing.T) {
		err := ValidateRUT("12345678-9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dígito verificador")
	})

	t.Run("rechaza RUT demasiado corto", func(t *testing.T) {
		assert.Error(t, ValidateRUT("5"))
		assert.Error(t, ValidateRUT(""))
	})
}

func TestFormatRUT(t *testing.T) {
	assert.Equal(t, "12345678-5", FormatRUT("12.345.678-5"))
	assert.Equal(t, "6-K", FormatRUT("6k"))
}

func TestDTEType(t *testing.T) {
	assert.True(t, DTEBoletaElectronica.IsValid())
	assert.True(t, DTEFacturaElectronica.IsValid())
	assert.True(t, DTENotaCreditoElectronica.IsValid())
	assert.False(t, DTEType(34).IsValid(), "tipo 34 no está soportado por el servicio")

	assert.Equal(t, "BOLETA ELECTRÓNICA", DTEBoletaElectronica.Name())
	assert.Empty(t, DTEType(0).Name())
}
