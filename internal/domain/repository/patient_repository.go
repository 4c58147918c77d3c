package repository

import (
	"context"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
)

// PatientRepository puerto sobre los campos fiscales del paciente.
type PatientRepository interface {
	// GetByID devuelve el paciente o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Patient, error)
	// UpdateTaxProfile actualiza en sitio el perfil fiscal del paciente.
	UpdateTaxProfile(ctx context.Context, patientID string, profile entity.TaxProfile) error
}
