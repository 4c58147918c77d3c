package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
)

// Asegura que PatientRepo implementa repository.PatientRepository.
var _ repository.PatientRepository = (*PatientRepo)(nil)

// PatientRepo acceso a los campos fiscales del paciente sobre PostgreSQL.
type PatientRepo struct {
	db DBTX
}

// NewPatientRepository construye el adaptador.
func NewPatientRepository(db DBTX) *PatientRepo {
	return &PatientRepo{db: db}
}

// GetByID obtiene un paciente (nil si no existe).
func (r *PatientRepo) GetByID(ctx context.Context, id string) (*entity.Patient, error) {
	const query = `
		SELECT id, clinic_id, name, email,
		       tax_rfc, tax_fiscal_address, tax_fiscal_postal_code, tax_regime, tax_cfdi_use,
		       created_at, updated_at
		FROM patients WHERE id = $1`
	var p entity.Patient
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ClinicID, &p.Name, &p.Email,
		&p.Tax.RFC, &p.Tax.FiscalAddress, &p.Tax.FiscalPostalCode, &p.Tax.TaxRegime, &p.Tax.CFDIUse,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

// UpdateTaxProfile actualiza en sitio los campos fiscales del paciente.
func (r *PatientRepo) UpdateTaxProfile(ctx context.Context, patientID string, t entity.TaxProfile) error {
	const query = `
		UPDATE patients SET
			tax_rfc = $2, tax_fiscal_address = $3, tax_fiscal_postal_code = $4,
			tax_regime = $5, tax_cfdi_use = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query,
		patientID, t.RFC, t.FiscalAddress, t.FiscalPostalCode, t.TaxRegime, t.CFDIUse, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update tax profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update tax profile: paciente %s no existe", patientID)
	}
	return nil
}
