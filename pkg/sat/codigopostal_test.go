package sat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinsalud/fiscal-api/pkg/sat"
)

func TestExtraerCodigoPostal(t *testing.T) {
	cases := []struct {
		name      string
		direccion string
		want      string
	}{
		{
			name:      "cp al final de la dirección",
			direccion: "Calle Falsa 123, Col. Centro, CDMX, 06000",
			want:      "06000",
		},
		{
			name:      "cp en medio",
			direccion: "Av. Reforma 222, CP 11000, Miguel Hidalgo",
			want:      "11000",
		},
		{
			name:      "toma la primera corrida de 5 dígitos",
			direccion: "Local 44100 esquina 45050, Guadalajara",
			want:      "44100",
		},
		{
			name:      "sin corrida de 5 dígitos",
			direccion: "Conocido, Col. Centro, sin número",
			want:      "",
		},
		{
			name:      "números de calle cortos no cuentan",
			direccion: "Calle 5 de Mayo 123, interior 4",
			want:      "",
		},
		{
			name:      "cadena vacía",
			direccion: "",
			want:      "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sat.ExtraerCodigoPostal(tc.direccion))
		})
	}
}

func TestCodigoPostal_PrefiereCampoEstructurado(t *testing.T) {
	// El campo estructurado manda aunque la dirección traiga otro CP
	assert.Equal(t, "03100", sat.CodigoPostal("03100", "Eje Central 10, 06000"))
	// Sin campo estructurado cae al heurístico sobre texto libre
	assert.Equal(t, "06000", sat.CodigoPostal("", "Eje Central 10, 06000"))
	// Sin ninguno: vacío (el caller decide el error de validación)
	assert.Equal(t, "", sat.CodigoPostal("", "Domicilio conocido"))
}

func TestFormaPago(t *testing.T) {
	cases := []struct {
		metodo string
		want   string
	}{
		{sat.PaymentMethodCash, "01"},
		{sat.PaymentMethodTransfer, "03"},
		{sat.PaymentMethodCard, "04"},
		{"unknown", "99"},
		{"", "99"},
		{"CASH", "99"}, // el mapeo es sensible a mayúsculas: el colaborador persiste en minúsculas
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sat.FormaPago(tc.metodo), "metodo=%q", tc.metodo)
	}
}
