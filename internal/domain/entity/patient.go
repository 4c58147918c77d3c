package entity

import "time"

// TaxProfile es el perfil fiscal del receptor, embebido en el paciente pero
// propiedad conceptual del núcleo fiscal: se actualiza vía el comando de
// sincronización previo a la facturación.
type TaxProfile struct {
	RFC              string
	FiscalAddress    string // domicilio fiscal de texto libre (datos heredados)
	FiscalPostalCode string // CP estructurado; si está vacío se extrae de FiscalAddress
	TaxRegime        string // c_RegimenFiscal del receptor
	CFDIUse          string // c_UsoCFDI
}

// Equal compara campo a campo (para decidir si hay que persistir cambios).
func (p TaxProfile) Equal(other TaxProfile) bool {
	return p == other
}

// Patient representa al paciente (receptor de la factura). El resto de sus
// datos clínicos viven en la app principal; aquí solo interesa el perfil fiscal.
type Patient struct {
	ID        string
	ClinicID  string
	Name      string
	Email     string
	Tax       TaxProfile
	CreatedAt time.Time
	UpdatedAt time.Time
}
