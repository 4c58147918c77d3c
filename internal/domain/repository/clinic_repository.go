package repository

import (
	"context"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
)

// ClinicRepository puerto de lectura de clínicas (la administración vive en la
// app principal).
type ClinicRepository interface {
	// GetByID devuelve la clínica o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Clinic, error)
}
