package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/config"
	antrianServices "github.com/c14220110/apotek-antrian-backend/internal/antrian/services"
	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/routes"
	"github.com/c14220110/apotek-antrian-backend/pkg/storage/mariadb"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
	"github.com/c14220110/apotek-antrian-backend/ws"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if !cfg.EnvFileLoaded {
		logger.Warn().Msg(".env file not found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mariadb.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to database")

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token issuer")
	}

	var store antrianServices.SequenceStore = antrianServices.NewMemorySequenceStore()
	if cfg.TicketCounter == config.TicketCounterMySQL {
		store = antrianServices.NewMySQLSequenceStore(db)
	}
	logger.Info().Str("ticket_counter", cfg.TicketCounter).Msg("ticket counter selected")

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middlewares.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	antrianService := routes.Init(e, routes.Dependencies{
		DB:         db,
		Log:        logger,
		Tokens:     tokens,
		Hub:        hub,
		Reconciler: antrianServices.NewReconciler(logger),
		Tickets:    antrianServices.NewTicketGenerator(store),
	})

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return utils.JSON(c, http.StatusServiceUnavailable, "database unavailable", nil)
		}
		return utils.JSON(c, http.StatusOK, "ok", echo.Map{"ws_clients": hub.ClientCount()})
	})

	// Snapshot awal lalu resync berkala
	if err := antrianService.Resync(ctx); err != nil {
		logger.Error().Err(err).Msg("initial queue resync failed")
	}
	go antrianService.RunResync(ctx, cfg.ResyncInterval)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
