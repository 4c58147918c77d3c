package repository

import (
	"context"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
)

// FiscalIdentityRepository puerto de persistencia de identidades fiscales
// (una fila por clínica).
type FiscalIdentityRepository interface {
	// GetByClinicID devuelve la identidad de la clínica o nil si no existe.
	GetByClinicID(ctx context.Context, clinicID string) (*entity.FiscalIdentity, error)
	// Upsert inserta o actualiza la identidad (conflicto en clinic_id).
	Upsert(ctx context.Context, identity *entity.FiscalIdentity) error
}
