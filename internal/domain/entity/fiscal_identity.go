package entity

import "time"

// Ambientes del PAC.
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

// FiscalIdentity es el perfil fiscal y las credenciales de una clínica ante el
// PAC: una fila por clínica (upsert por clinic_id). Se crea en el primer
// guardado de credenciales; la api key se sobreescribe en cada guardado.
type FiscalIdentity struct {
	ID             string
	ClinicID       string
	RFC            string
	LegalName      string  // razón social registrada ante el SAT
	TaxRegime      string  // c_RegimenFiscal
	CertPath       string  // ruta del blob .cer en object storage
	KeyPath        string  // ruta del blob .key en object storage
	KeyPasswordEnc string  // contraseña de la llave privada, cifrada (pkg/secretbox)
	PersonID       *string // id de la persona en el PAC; nil hasta aprovisionar
	APIKeyEnc      string  // api key del PAC, cifrada (pkg/secretbox)
	Environment    string  // sandbox | production
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MissingField devuelve el primer campo requerido para timbrar que esté vacío,
// o "" si la identidad está completa. Una identidad parcial es inutilizable:
// el intento de factura debe fallar antes de tocar al PAC.
func (f *FiscalIdentity) MissingField() string {
	switch {
	case f.RFC == "":
		return "rfc"
	case f.LegalName == "":
		return "razón social"
	case f.TaxRegime == "":
		return "régimen fiscal"
	case f.CertPath == "":
		return "certificado CSD"
	case f.KeyPath == "":
		return "llave privada CSD"
	case f.KeyPasswordEnc == "":
		return "contraseña de la llave"
	case f.APIKeyEnc == "":
		return "api key del PAC"
	default:
		return ""
	}
}

// Provisioned informa si la clínica ya tiene persona registrada en el PAC.
func (f *FiscalIdentity) Provisioned() bool {
	return f.PersonID != nil && *f.PersonID != ""
}
