package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/devis-api/docs"
	"github.com/jhoicas/devis-api/internal/application/auth"
	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/application/draft"
	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/infrastructure/backend"
	"github.com/jhoicas/devis-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/devis-api/internal/infrastructure/pdf"
	"github.com/jhoicas/devis-api/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/devis-api/internal/interfaces/http"
	"github.com/jhoicas/devis-api/pkg/config"
	"github.com/jhoicas/devis-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Storage.Backend).
		Bool("auth", cfg.Auth.Enabled()).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	kvBackend, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("abrir almacenamiento")
	}

	m := metrics.New("devis")
	store := storage.NewStore(kvBackend.KV, storage.Options{
		Key:           cfg.Storage.Key,
		CapacityBytes: cfg.Storage.CapacityBytes,
		Logger:        log.Component("storage"),
		Observer:      m,
	})
	autosaver := draft.NewAutosaver(store, cfg.Draft.AutosaveDelay, log.Component("draft"))

	// Avisos de escrituras de otras instancias (solo Redis)
	var watchers sync.WaitGroup
	if kvBackend.Watcher != nil {
		watchers.Add(1)
		go func() {
			defer watchers.Done()
			err := kvBackend.Watcher.Watch(ctx, func(key string) {
				log.Info().Str("key", key).Msg("documento modificado por otra instancia")
			})
			if err != nil {
				log.Error().Err(err).Msg("suscripción a cambios finalizada")
			}
		}()
	}

	validator := devis.NewValidator()
	quoteUC := devis.NewQuoteUseCase(store, validator, autosaver, time.Now, log.Component("quotes"), m)
	draftUC := devis.NewDraftUseCase(store, autosaver)
	settingsUC := devis.NewSettingsUseCase(store, validator, log.Component("settings"))
	pdfUC := devis.NewPDFUseCase(store, infrapdf.NewMarotoPDFGenerator(), time.Now, log.Component("pdf"), m)
	ublUC := devis.NewUBLUseCase(store, ubl.NewQuotationBuilder(), log.Component("ubl"), m)

	var authUC *auth.AuthUseCase
	if cfg.Auth.Enabled() {
		authUC = auth.NewAuthUseCase(cfg.Auth.OwnerPasswordHash, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Devis API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		QuoteUC:        quoteUC,
		DraftUC:        draftUC,
		SettingsUC:     settingsUC,
		PDFUC:          pdfUC,
		UBLUC:          ublUC,
		AuthUC:         authUC,
		JWTSecret:      cfg.JWT.Secret,
		HTTPObserver:   m,
		MetricsHandler: m.Handler(),
		ServiceName:    cfg.App.Name,
		Logger:         log.Component("http"),
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

	// El borrador pendiente se guarda antes de cerrar el backend
	if err := autosaver.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("guardar borrador pendiente")
	}

	stop()
	watchers.Wait()
	if err := kvBackend.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar almacenamiento")
	}

	log.Info().Msg("aplicación detenida")
}
