package fiscal

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinsalud/fiscal-api/internal/application/dto"
	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
	"github.com/clinsalud/fiscal-api/internal/domain/repository"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
	"github.com/clinsalud/fiscal-api/pkg/logger"
)

const apiKeyDescription = "clinsalud fiscal-api"

// ProvisionUseCase asegura que una clínica tenga persona registrada y api key
// vigente en el PAC. Ciclo de la identidad: sin aprovisionar -> persona creada
// -> llave emitida; cada guardado vuelve a "llave emitida" haciendo trabajo
// real contra el PAC (idempotente en efecto, no en mecanismo).
type ProvisionUseCase struct {
	clinicRepo   repository.ClinicRepository
	identityRepo repository.FiscalIdentityRepository
	issuer       IssuerClient
	blobs        BlobStore
	codec        SecretCodec
	loginDomain  string
	log          *logger.Logger
}

// NewProvisionUseCase construye el caso de uso.
func NewProvisionUseCase(
	clinicRepo repository.ClinicRepository,
	identityRepo repository.FiscalIdentityRepository,
	issuer IssuerClient,
	blobs BlobStore,
	codec SecretCodec,
	loginDomain string,
	log *logger.Logger,
) *ProvisionUseCase {
	return &ProvisionUseCase{
		clinicRepo:   clinicRepo,
		identityRepo: identityRepo,
		issuer:       issuer,
		blobs:        blobs,
		codec:        codec,
		loginDomain:  loginDomain,
		log:          log,
	}
}

// SaveCredentials guarda las credenciales fiscales de la clínica: crea la
// persona en el PAC si aún no existe, emite SIEMPRE una api key nueva (la
// anterior queda sombreada, no se revoca) y persiste la identidad con los
// secretos cifrados. La api key en claro nunca sale del flujo de
// aprovisionamiento.
func (uc *ProvisionUseCase) SaveCredentials(ctx context.Context, in dto.SaveCredentialsRequest) error {
	if in.ClinicID == "" {
		return domain.NewValidationError("clinic_id", "requerido")
	}
	if in.CertificatePath == "" || in.PrivateKeyPath == "" {
		return domain.NewValidationError("certificado/llave CSD", "rutas requeridas")
	}
	if in.PrivateKeyPassword == "" {
		return domain.NewValidationError("contraseña de la llave", "requerida")
	}
	env := in.Environment
	if env == "" {
		env = entity.EnvironmentSandbox
	}
	if env != entity.EnvironmentSandbox && env != entity.EnvironmentProduction {
		return domain.NewValidationError("environment", "debe ser sandbox o production")
	}

	clinic, err := uc.clinicRepo.GetByID(ctx, in.ClinicID)
	if err != nil {
		return err
	}
	if clinic == nil {
		return &domain.NotFoundError{Resource: "clínica", ID: in.ClinicID}
	}
	// Precondición: el perfil fiscal base se captura en la app principal.
	if clinic.RFC == "" {
		return domain.NewValidationError("rfc", "la clínica no tiene RFC capturado")
	}
	if clinic.LegalName == "" {
		return domain.NewValidationError("razón social", "la clínica no tiene razón social capturada")
	}

	// Verificar que los blobs del CSD existan antes de tocar al PAC.
	for _, path := range []string{in.CertificatePath, in.PrivateKeyPath} {
		ok, err := uc.blobs.Exists(ctx, path)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewValidationError("csd", fmt.Sprintf("no existe el blob %s", path))
		}
	}

	identity, err := uc.identityRepo.GetByClinicID(ctx, in.ClinicID)
	if err != nil {
		return err
	}
	if identity == nil {
		identity = &entity.FiscalIdentity{ID: uuid.New().String(), ClinicID: in.ClinicID}
	}
	identity.RFC = clinic.RFC
	identity.LegalName = clinic.LegalName
	identity.TaxRegime = clinic.TaxRegime
	identity.CertPath = in.CertificatePath
	identity.KeyPath = in.PrivateKeyPath
	identity.Environment = env

	if !identity.Provisioned() {
		password, err := generateStrongPassword()
		if err != nil {
			return err
		}
		personID, err := uc.issuer.CreatePerson(ctx, env, facturama.CreatePersonInput{
			RFC:       clinic.RFC,
			LegalName: clinic.LegalName,
			Email:     uc.syntheticLogin(clinic.RFC),
			Password:  password,
		})
		if err != nil {
			return err
		}
		identity.PersonID = &personID
		uc.log.Info().Str("clinic_id", in.ClinicID).Str("person_id", personID).Msg("persona registrada en el PAC")
	}

	apiKey, err := uc.issuer.CreateAPIKey(ctx, env, *identity.PersonID, apiKeyDescription)
	if err != nil {
		return err
	}
	if identity.APIKeyEnc, err = uc.codec.Encrypt(apiKey); err != nil {
		return err
	}
	if identity.KeyPasswordEnc, err = uc.codec.Encrypt(in.PrivateKeyPassword); err != nil {
		return err
	}

	if err := uc.identityRepo.Upsert(ctx, identity); err != nil {
		return err
	}
	uc.log.Info().Str("clinic_id", in.ClinicID).Str("env", env).Msg("credenciales fiscales guardadas")
	return nil
}

// syntheticLogin deriva un login determinista del RFC; el PAC exige un email.
func (uc *ProvisionUseCase) syntheticLogin(rfc string) string {
	return "csd." + strings.ToLower(rfc) + "@" + uc.loginDomain
}

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&*+-_"

// generateStrongPassword genera la contraseña de la cuenta de la persona en el
// PAC. Solo viaja en la petición de alta; no se persiste en ningún lado.
func generateStrongPassword() (string, error) {
	const length = 24
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generar contraseña: %w", err)
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(out), nil
}
