package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appcatalog "github.com/jhoicas/control-v/internal/application/catalog"
	"github.com/jhoicas/control-v/internal/application/dto"
	appledger "github.com/jhoicas/control-v/internal/application/ledger"
	"github.com/jhoicas/control-v/internal/application/session"
	infracatalog "github.com/jhoicas/control-v/internal/infrastructure/catalog"
	"github.com/jhoicas/control-v/internal/infrastructure/export"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/control-v/internal/interfaces/http"
	"github.com/jhoicas/control-v/pkg/config"
	"github.com/jhoicas/control-v/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	listenCtx, stopListen := context.WithCancel(ctx)
	defer stopListen()

	storeLog := log.Component("store")
	hub := realtime.NewHub()
	st, err := openStores(ctx, listenCtx, cfg, hub, storeLog)
	if err != nil {
		storeLog.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()
	storeLog.Info().Str("store", st.ledger.Name()).Bool("fallback", st.fallback).Msg("almacén activo")

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = randomSecret()
		log.Warn().Msg("JWT_SECRET vacío: se generó uno aleatorio, los tokens no sobreviven a un reinicio")
	}

	loader := infracatalog.NewLoader(time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second)
	catalogUC := appcatalog.NewUseCase(loader, st.catalog, cfg.Catalog.URL)
	if err := catalogUC.Init(ctx); err != nil {
		catalogLog := log.Component("catalog")
		catalogLog.Fatal().Err(err).Msg("inicializar catálogo")
	}

	// Archivo opcional de exportaciones en MinIO.
	var archiver export.Archiver
	exportLog := log.Component("export")
	minioArchiver, err := export.NewMinIOArchiver(cfg.MinIO)
	if err != nil {
		exportLog.Warn().Err(err).Msg("MinIO no disponible; las exportaciones no se archivarán")
	} else if minioArchiver != nil {
		if err := minioArchiver.EnsureBucket(ctx); err != nil {
			exportLog.Warn().Err(err).Str("bucket", cfg.MinIO.Bucket).Msg("bucket de exportaciones no disponible")
		} else {
			archiver = minioArchiver
		}
	}
	exporter := export.NewExporter(archiver)

	ledgerUC := appledger.NewUseCase(st.ledger, st.txRunner, catalogUC, exporter, appledger.Options{
		LocationConflictCheck: cfg.Ledger.LocationConflictCheck,
	})
	sessionUC := session.NewUseCase(session.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, dto.SessionSettings{LocationRequired: cfg.Ledger.LocationRequired})

	// Sin WriteTimeout: cortaría los streams SSE.
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Control-V API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": st.ledger.Name()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:  ledgerUC,
		CatalogUC: catalogUC,
		SessionUC: sessionUC,
		Hub:       hub,
		StoreName: st.ledger.Name(),
		Fallback:  st.fallback,
		JWTSecret: cfg.JWT.Secret,
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
	stopListen()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("generar secreto JWT: " + err.Error())
	}
	return hex.EncodeToString(b)
}
