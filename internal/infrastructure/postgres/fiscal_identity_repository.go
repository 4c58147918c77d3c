package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
)

// Asegura que FiscalIdentityRepo implementa repository.FiscalIdentityRepository.
var _ repository.FiscalIdentityRepository = (*FiscalIdentityRepo)(nil)

// FiscalIdentityRepo implementación del puerto FiscalIdentityRepository sobre PostgreSQL.
type FiscalIdentityRepo struct {
	db DBTX
}

// NewFiscalIdentityRepository construye el adaptador de persistencia de identidades fiscales.
func NewFiscalIdentityRepository(db DBTX) *FiscalIdentityRepo {
	return &FiscalIdentityRepo{db: db}
}

// GetByClinicID obtiene la identidad fiscal de una clínica (nil si no existe).
func (r *FiscalIdentityRepo) GetByClinicID(ctx context.Context, clinicID string) (*entity.FiscalIdentity, error) {
	const query = `
		SELECT id, clinic_id, rfc, legal_name, tax_regime, cert_path, key_path,
		       key_password_enc, person_id, api_key_enc, environment, created_at, updated_at
		FROM fiscal_identities WHERE clinic_id = $1`
	var f entity.FiscalIdentity
	err := r.db.QueryRow(ctx, query, clinicID).Scan(
		&f.ID, &f.ClinicID, &f.RFC, &f.LegalName, &f.TaxRegime, &f.CertPath, &f.KeyPath,
		&f.KeyPasswordEnc, &f.PersonID, &f.APIKeyEnc, &f.Environment, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal identity: %w", err)
	}
	return &f, nil
}

// Upsert inserta o actualiza la identidad con conflicto en clinic_id. La api
// key se sobreescribe completa en cada guardado (no hay rotación incremental).
func (r *FiscalIdentityRepo) Upsert(ctx context.Context, f *entity.FiscalIdentity) error {
	const query = `
		INSERT INTO fiscal_identities
			(id, clinic_id, rfc, legal_name, tax_regime, cert_path, key_path,
			 key_password_enc, person_id, api_key_enc, environment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (clinic_id) DO UPDATE SET
			rfc              = EXCLUDED.rfc,
			legal_name       = EXCLUDED.legal_name,
			tax_regime       = EXCLUDED.tax_regime,
			cert_path        = EXCLUDED.cert_path,
			key_path         = EXCLUDED.key_path,
			key_password_enc = EXCLUDED.key_password_enc,
			person_id        = EXCLUDED.person_id,
			api_key_enc      = EXCLUDED.api_key_enc,
			environment      = EXCLUDED.environment,
			updated_at       = EXCLUDED.updated_at`
	now := time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	_, err := r.db.Exec(ctx, query,
		f.ID, f.ClinicID, f.RFC, f.LegalName, f.TaxRegime, f.CertPath, f.KeyPath,
		f.KeyPasswordEnc, f.PersonID, f.APIKeyEnc, f.Environment, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert fiscal identity: %w", err)
	}
	return nil
}
