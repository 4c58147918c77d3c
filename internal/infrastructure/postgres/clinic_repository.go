package postgres

import (
	"context"
	"fmt"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
)

// Asegura que ClinicRepo implementa repository.ClinicRepository.
var _ repository.ClinicRepository = (*ClinicRepo)(nil)

// ClinicRepo lectura de clínicas sobre PostgreSQL.
type ClinicRepo struct {
	db DBTX
}

// NewClinicRepository construye el adaptador de lectura de clínicas.
func NewClinicRepository(db DBTX) *ClinicRepo {
	return &ClinicRepo{db: db}
}

// GetByID obtiene una clínica (nil si no existe).
func (r *ClinicRepo) GetByID(ctx context.Context, id string) (*entity.Clinic, error) {
	const query = `
		SELECT id, name, rfc, legal_name, tax_regime, address, postal_code, phone, email, created_at, updated_at
		FROM clinics WHERE id = $1`
	var c entity.Clinic
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.RFC, &c.LegalName, &c.TaxRegime, &c.Address, &c.PostalCode,
		&c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get clinic: %w", err)
	}
	return &c, nil
}
