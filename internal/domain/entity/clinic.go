package entity

import "time"

// Clinic representa una clínica/tenant de la plataforma. Este servicio la lee
// para armar el bloque emisor de la factura; su administración (CRUD) vive en
// la app principal.
type Clinic struct {
	ID         string
	Name       string
	RFC        string // RFC del emisor; lo captura la app principal en ajustes fiscales
	LegalName  string // razón social ante el SAT
	TaxRegime  string // c_RegimenFiscal del emisor
	Address    string // dirección de texto libre (datos heredados)
	PostalCode string // CP estructurado; si está vacío se extrae de Address
	Phone      string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
