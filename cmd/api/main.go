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
	"github.com/shopspring/decimal"

	"github.com/thecarebot/facturacion-sii/internal/application/autofill"
	"github.com/thecarebot/facturacion-sii/internal/application/billing"
	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	infraai "github.com/thecarebot/facturacion-sii/internal/infrastructure/ai"
	infrapdf "github.com/thecarebot/facturacion-sii/internal/infrastructure/pdf"
	"github.com/thecarebot/facturacion-sii/internal/infrastructure/postgres"
	infrasii "github.com/thecarebot/facturacion-sii/internal/infrastructure/sii"
	httpRouter "github.com/thecarebot/facturacion-sii/internal/interfaces/http"
	"github.com/thecarebot/facturacion-sii/pkg/config"
	"github.com/thecarebot/facturacion-sii/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:      cfg.App.Env,
		Level:    "info",
		Servicio: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Sin base de datos configurada el servicio arranca en modo demo:
	// folios aleatorios, sin persistencia de documentos ni patrones.
	var (
		folioTx  billing.FolioTxRunner
		docRepo  repository.TaxDocumentRepository
		logRepo  repository.OperationLogRepository
		patterns repository.PatternRepository
	)
	if cfg.DB.Configured() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		folioTx = postgres.NewTxRunner(pool)
		docRepo = postgres.NewTaxDocumentRepository(pool)
		logRepo = postgres.NewOperationLogRepository(pool)
		patterns = postgres.NewPatternRepository(pool)
	} else {
		log.Warn().Msg("base de datos no configurada; arrancando en modo demo sin persistencia")
	}

	emisor := dte.Emisor{
		RUT:                cfg.Emisor.RUT,
		RazonSocial:        cfg.Emisor.RazonSocial,
		Giro:               cfg.Emisor.Giro,
		Direccion:          cfg.Emisor.Direccion,
		Comuna:             cfg.Emisor.Comuna,
		ActividadEconomica: cfg.Emisor.ActividadEconomica,
	}

	workflow := billing.NewInvoiceWorkflow(
		billing.NewFolioAllocator(folioTx),
		infrasii.NewXMLBuilder(),
		infrasii.NewMockSigner(),
		infrapdf.NewMarotoPDFGenerator(),
		infrasii.NewSimulatedSubmitter(cfg.SII.Ambiente, log),
		docRepo,
		logRepo,
		emisor,
		decimal.NewFromFloat(cfg.SII.TasaIVA),
		log,
	)

	// Predictor IA solo si hay API key; sin ella el use case queda en la
	// estrategia determinista por frecuencia.
	var predictor autofill.Predictor
	if cfg.AI.AnthropicAPIKey != "" {
		predictor = infraai.NewAnthropicPredictor(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel, patterns)
	}
	autofillUC := autofill.NewUseCase(patterns, predictor, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación SII API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceWorkflow: workflow,
		AutofillUC:      autofillUC,
		Documents:       docRepo,
		JWTSecret:       cfg.JWT.Secret,
		Persistente:     cfg.DB.Configured(),
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

	log.Info().Msg("aplicación detenida")
}
