package postgres

import (
	"context"
	"fmt"

	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
)

// Asegura que PaymentRepo implementa repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo lectura de cobros y sus joins sobre PostgreSQL.
type PaymentRepo struct {
	db DBTX
}

// NewPaymentRepository construye el adaptador de lectura de cobros.
func NewPaymentRepository(db DBTX) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// GetIssuanceContext carga pago + paciente + servicio + clínica + identidad
// fiscal en una sola consulta, de modo que el pipeline de timbrado parte de una
// foto consistente. La identidad va con LEFT JOIN: puede no existir todavía.
func (r *PaymentRepo) GetIssuanceContext(ctx context.Context, paymentID string) (*repository.IssuanceContext, error) {
	const query = `
		SELECT
			p.id, p.clinic_id, p.patient_id, p.service_id, p.amount, p.method, p.paid_at, p.created_at,
			pa.id, pa.clinic_id, pa.name, pa.email,
			pa.tax_rfc, pa.tax_fiscal_address, pa.tax_fiscal_postal_code, pa.tax_regime, pa.tax_cfdi_use,
			s.id, s.clinic_id, s.name, s.sat_product_key, s.sat_unit_key,
			c.id, c.name, c.rfc, c.legal_name, c.tax_regime, c.address, c.postal_code, c.phone, c.email,
			fi.id, fi.rfc, fi.legal_name, fi.tax_regime, fi.cert_path, fi.key_path,
			fi.key_password_enc, fi.person_id, fi.api_key_enc, fi.environment
		FROM payments p
		JOIN patients pa         ON pa.id = p.patient_id
		JOIN medical_services s  ON s.id = p.service_id
		JOIN clinics c           ON c.id = p.clinic_id
		LEFT JOIN fiscal_identities fi ON fi.clinic_id = p.clinic_id
		WHERE p.id = $1`

	var (
		ic repository.IssuanceContext
		fiID, fiRFC, fiLegal, fiRegime, fiCert, fiKey, fiPassEnc, fiAPIEnc, fiEnv *string
		fiPersonID                                                               *string
	)
	err := r.db.QueryRow(ctx, query, paymentID).Scan(
		&ic.Payment.ID, &ic.Payment.ClinicID, &ic.Payment.PatientID, &ic.Payment.ServiceID,
		&ic.Payment.Amount, &ic.Payment.Method, &ic.Payment.PaidAt, &ic.Payment.CreatedAt,
		&ic.Patient.ID, &ic.Patient.ClinicID, &ic.Patient.Name, &ic.Patient.Email,
		&ic.Patient.Tax.RFC, &ic.Patient.Tax.FiscalAddress, &ic.Patient.Tax.FiscalPostalCode,
		&ic.Patient.Tax.TaxRegime, &ic.Patient.Tax.CFDIUse,
		&ic.Service.ID, &ic.Service.ClinicID, &ic.Service.Name, &ic.Service.SATProductKey, &ic.Service.SATUnitKey,
		&ic.Clinic.ID, &ic.Clinic.Name, &ic.Clinic.RFC, &ic.Clinic.LegalName, &ic.Clinic.TaxRegime,
		&ic.Clinic.Address, &ic.Clinic.PostalCode, &ic.Clinic.Phone, &ic.Clinic.Email,
		&fiID, &fiRFC, &fiLegal, &fiRegime, &fiCert, &fiKey, &fiPassEnc, &fiPersonID, &fiAPIEnc, &fiEnv,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issuance context: %w", err)
	}

	if fiID != nil {
		ic.Identity = &entity.FiscalIdentity{
			ID:             *fiID,
			ClinicID:       ic.Clinic.ID,
			RFC:            deref(fiRFC),
			LegalName:      deref(fiLegal),
			TaxRegime:      deref(fiRegime),
			CertPath:       deref(fiCert),
			KeyPath:        deref(fiKey),
			KeyPasswordEnc: deref(fiPassEnc),
			PersonID:       fiPersonID,
			APIKeyEnc:      deref(fiAPIEnc),
			Environment:    deref(fiEnv),
		}
	}
	return &ic, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
