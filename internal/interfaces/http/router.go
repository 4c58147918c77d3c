package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/fiscal-api/internal/application/fiscal"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IssueInvoice *fiscal.IssueInvoiceUseCase
	Provision    *fiscal.ProvisionUseCase
	TestInvoice  *fiscal.TestInvoiceUseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todos los comandos son POST; Fiber
// responde 405 Method Not Allowed para cualquier otro método sobre esas rutas.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	fiscalGroup := api.Group("/fiscal")
	handler := NewFiscalHandler(deps.IssueInvoice, deps.Provision, deps.TestInvoice)
	fiscalGroup.Post("/invoices", handler.IssueInvoice)
	fiscalGroup.Post("/invoices/test", handler.IssueTestInvoice)
	fiscalGroup.Post("/credentials", handler.SaveCredentials)
}
