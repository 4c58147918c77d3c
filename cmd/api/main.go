package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/clinsalud/fiscal-api/internal/application/fiscal"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/facturama"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/postgres"
	"github.com/clinsalud/fiscal-api/internal/infrastructure/storage"
	httpRouter "github.com/clinsalud/fiscal-api/internal/interfaces/http"
	"github.com/clinsalud/fiscal-api/pkg/config"
	"github.com/clinsalud/fiscal-api/pkg/logger"
	"github.com/clinsalud/fiscal-api/pkg/secretbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando servicio fiscal")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	codec, err := secretbox.New(cfg.Secrets.ActiveVersion, cfg.Secrets.Keys)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar secretbox")
	}

	blobs, err := storage.NewS3BlobStore(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar object storage")
	}

	clinicRepo := postgres.NewClinicRepository(pool)
	identityRepo := postgres.NewFiscalIdentityRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	pac := facturama.NewClient(cfg.Facturama)

	provisionUC := fiscal.NewProvisionUseCase(
		clinicRepo, identityRepo, pac, blobs, codec, cfg.Facturama.LoginDomain, log,
	)
	issueUC := fiscal.NewIssueInvoiceUseCase(
		paymentRepo, invoiceRepo, patientRepo, txRunner, pac, blobs, codec, log,
	)
	testUC := fiscal.NewTestInvoiceUseCase(
		clinicRepo, identityRepo, pac, blobs, codec, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // el timbrado puede tardar del lado del PAC
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ClinSalud Fiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IssueInvoice: issueUC,
		Provision:    provisionUC,
		TestInvoice:  testUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("servicio detenido")
}
