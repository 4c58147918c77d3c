package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/fiscal-api/internal/application/dto"
	"github.com/clinsalud/fiscal-api/internal/application/fiscal"
	"github.com/clinsalud/fiscal-api/internal/domain"
	"github.com/clinsalud/fiscal-api/internal/domain/entity"
)

// FiscalHandler maneja las peticiones HTTP del núcleo fiscal (protegido).
type FiscalHandler struct {
	issueUC     *fiscal.IssueInvoiceUseCase
	provisionUC *fiscal.ProvisionUseCase
	testUC      *fiscal.TestInvoiceUseCase
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(
	issueUC *fiscal.IssueInvoiceUseCase,
	provisionUC *fiscal.ProvisionUseCase,
	testUC *fiscal.TestInvoiceUseCase,
) *FiscalHandler {
	return &FiscalHandler{issueUC: issueUC, provisionUC: provisionUC, testUC: testUC}
}

// IssueInvoice timbra la factura de un cobro registrado.
// POST /api/fiscal/invoices
func (h *FiscalHandler) IssueInvoice(c *fiber.Ctx) error {
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.PaymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "payment_id requerido"})
	}

	// Comando explícito de sincronización del perfil fiscal del receptor,
	// separado del timbrado (el timbrado en sí no escribe al paciente).
	err := h.issueUC.SyncRecipientProfile(c.Context(), in.PaymentID, entity.TaxProfile{
		RFC:           in.RecipientTaxID,
		FiscalAddress: in.FiscalAddress,
		TaxRegime:     in.FiscalRegime,
		CFDIUse:       in.CFDIUse,
	})
	if err != nil {
		return writeError(c, err)
	}

	inv, err := h.issueUC.IssueInvoice(c.Context(), in.PaymentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InvoiceResponse{UUID: inv.UUID, PDFURL: inv.PDFURL, XMLURL: inv.XMLURL})
}

// SaveCredentials guarda credenciales fiscales y aprovisiona a la clínica en el PAC.
// POST /api/fiscal/credentials
func (h *FiscalHandler) SaveCredentials(c *fiber.Ctx) error {
	var in dto.SaveCredentialsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.provisionUC.SaveCredentials(c.Context(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// IssueTestInvoice timbra una factura de diagnóstico en sandbox.
// POST /api/fiscal/invoices/test
func (h *FiscalHandler) IssueTestInvoice(c *fiber.Ctx) error {
	var in dto.TestInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.testUC.IssueTestInvoice(c.Context(), in.ClinicID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InvoiceResponse{UUID: res.UUID, PDFURL: res.PDFURL, XMLURL: res.XMLURL})
}

// writeError mapea la taxonomía de errores del dominio a respuestas HTTP.
// PersistenceError nunca llega aquí: se traga y loggea en el caso de uso.
func writeError(c *fiber.Ctx, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationErr.Error()})
	}
	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFoundErr.Error()})
	}
	var issuerErr *domain.IssuerError
	if errors.As(err, &issuerErr) {
		// Se reenvía el mensaje del PAC tal cual: es lo único accionable.
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "ISSUER", Message: issuerErr.Message})
	}
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "STORAGE", Message: storageErr.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
