package repository

import (
	"context"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
)

// IssuanceContext es la lectura consistente que necesita el pipeline de
// facturación: el pago con sus joins (paciente, servicio, clínica) y la
// identidad fiscal de la clínica, todo en una sola consulta.
type IssuanceContext struct {
	Payment  entity.Payment
	Patient  entity.Patient
	Service  entity.MedicalService
	Clinic   entity.Clinic
	Identity *entity.FiscalIdentity // nil si la clínica aún no guarda credenciales
}

// PaymentRepository puerto de lectura de cobros (entidad del colaborador de
// pagos; este servicio nunca la escribe).
type PaymentRepository interface {
	// GetIssuanceContext carga el pago y sus joins en una lectura consistente.
	// Devuelve nil si el pago o alguno de sus joins obligatorios no existe.
	GetIssuanceContext(ctx context.Context, paymentID string) (*IssuanceContext, error)
}
