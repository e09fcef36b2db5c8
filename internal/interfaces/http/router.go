package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-v/internal/application/catalog"
	appledger "github.com/jhoicas/control-v/internal/application/ledger"
	"github.com/jhoicas/control-v/internal/application/session"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC  *appledger.UseCase
	CatalogUC *catalog.UseCase
	SessionUC *session.UseCase
	Hub       *realtime.Hub
	StoreName string
	Fallback  bool
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	statusHandler := NewStatusHandler(deps.StoreName, deps.Fallback, deps.Hub, deps.CatalogUC)
	api.Get("/status", statusHandler.Status)

	// Auth (público)
	sessionHandler := NewSessionHandler(deps.SessionUC)
	api.Post("/auth/anonymous", sessionHandler.Anonymous)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Get("/session/settings", sessionHandler.GetSettings)
	protected.Put("/session/settings", sessionHandler.UpdateSettings)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	protected.Get("/catalog", catalogHandler.Get)
	protected.Post("/catalog/reload", catalogHandler.Reload)
	protected.Post("/scan", catalogHandler.Scan)

	ledgers := protected.Group("/ledgers/:ledger", RequireLedger())
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.SessionUC)
	ledgers.Post("/entries", ledgerHandler.Submit)
	ledgers.Get("/entries", ledgerHandler.List)
	ledgers.Delete("/entries", ledgerHandler.DeleteMany)
	ledgers.Delete("/entries/:id", ledgerHandler.Delete)
	ledgers.Get("/rollup", ledgerHandler.Rollup)
	ledgers.Get("/export", ledgerHandler.Export)
	ledgers.Get("/stream", ledgerHandler.Stream)
}
