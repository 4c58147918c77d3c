package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment es el cobro registrado por el colaborador de pagos de la app
// principal. Para este servicio es de solo lectura; su id es la llave de
// unicidad de la factura.
type Payment struct {
	ID        string
	ClinicID  string
	PatientID string
	ServiceID string
	Amount    decimal.Decimal
	Method    string // cash | transfer | card | otro (ver pkg/sat.FormaPago)
	PaidAt    time.Time
	CreatedAt time.Time
}

// MedicalService es el servicio médico cobrado; alimenta el concepto único de
// la factura (claves SAT de producto/servicio y unidad).
type MedicalService struct {
	ID           string
	ClinicID     string
	Name         string
	SATProductKey string // c_ClaveProdServ; vacío = clave genérica de servicios médicos
	SATUnitKey    string // c_ClaveUnidad; vacío = E48 (unidad de servicio)
}
