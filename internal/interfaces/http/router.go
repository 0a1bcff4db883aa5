package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/devis-api/internal/application/auth"
	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	QuoteUC    *devis.QuoteUseCase
	DraftUC    *devis.DraftUseCase
	SettingsUC *devis.SettingsUseCase
	PDFUC      *devis.PDFUseCase
	UBLUC      *devis.UBLUseCase
	AuthUC     *auth.AuthUseCase // nil: API abierta (uso local)
	JWTSecret  string

	HTTPObserver   HTTPObserver // opcional
	MetricsHandler nethttp.Handler // opcional, GET /metrics
	ServiceName    string
	Logger         *logger.Logger // opcional, una línea por petición
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(requestIDMiddleware(), RequestLogger(deps.Logger))
	}
	if deps.HTTPObserver != nil {
		app.Use(MetricsMiddleware(deps.HTTPObserver))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Auth (público) y resto protegido con Bearer Token solo si hay titular configurado
	protected := api
	if deps.AuthUC != nil {
		authHandler := NewAuthHandler(deps.AuthUC)
		api.Post("/auth/token", authHandler.Token)
		protected = api.Group("/", AuthMiddleware(deps.JWTSecret))
	}

	quoteHandler := NewQuoteHandler(deps.QuoteUC, deps.PDFUC, deps.UBLUC)
	protected.Post("/totals", quoteHandler.Totals)

	// Quotes
	quotes := protected.Group("/quotes")
	quotes.Get("/", quoteHandler.List)
	quotes.Post("/", quoteHandler.Create)
	quotes.Get("/stats", quoteHandler.Stats)
	quotes.Get("/:id", quoteHandler.GetByID)
	quotes.Put("/:id", quoteHandler.Update)
	quotes.Patch("/:id/status", quoteHandler.ChangeStatus)
	quotes.Delete("/:id", quoteHandler.Delete)
	quotes.Post("/:id/duplicate", quoteHandler.Duplicate)
	quotes.Get("/:id/pdf", quoteHandler.PDF)
	quotes.Get("/:id/ubl", quoteHandler.UBL)

	// Draft
	draftHandler := NewDraftHandler(deps.DraftUC, deps.PDFUC)
	draft := protected.Group("/draft")
	draft.Get("/", draftHandler.Get)
	draft.Put("/", draftHandler.Put)
	draft.Delete("/", draftHandler.Delete)
	draft.Post("/flush", draftHandler.Flush)
	draft.Post("/pdf", draftHandler.PDF)

	// Settings
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	settings := protected.Group("/settings")
	settings.Get("/company", settingsHandler.GetCompany)
	settings.Put("/company", settingsHandler.PutCompany)
	settings.Get("/conditions", settingsHandler.GetConditions)
	settings.Put("/conditions", settingsHandler.PutConditions)
	settings.Get("/legal-notices", settingsHandler.GetLegalNotices)
	settings.Put("/legal-notices", settingsHandler.PutLegalNotices)

	// Storage
	st := protected.Group("/storage")
	st.Get("/usage", settingsHandler.Usage)
	st.Get("/export", settingsHandler.Export)
	st.Post("/import", settingsHandler.Import)
	st.Post("/sweep", settingsHandler.Sweep)
}
