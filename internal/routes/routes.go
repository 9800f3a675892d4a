package routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	antrianControllers "github.com/c14220110/apotek-antrian-backend/internal/antrian/controllers"
	antrianRoutes "github.com/c14220110/apotek-antrian-backend/internal/antrian/routes"
	antrianServices "github.com/c14220110/apotek-antrian-backend/internal/antrian/services"
	authControllers "github.com/c14220110/apotek-antrian-backend/internal/auth/controllers"
	authRoutes "github.com/c14220110/apotek-antrian-backend/internal/auth/routes"
	authServices "github.com/c14220110/apotek-antrian-backend/internal/auth/services"
	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	metricsControllers "github.com/c14220110/apotek-antrian-backend/internal/metrics/controllers"
	metricsRoutes "github.com/c14220110/apotek-antrian-backend/internal/metrics/routes"
	metricsServices "github.com/c14220110/apotek-antrian-backend/internal/metrics/services"
	obatControllers "github.com/c14220110/apotek-antrian-backend/internal/obat/controllers"
	obatRoutes "github.com/c14220110/apotek-antrian-backend/internal/obat/routes"
	obatServices "github.com/c14220110/apotek-antrian-backend/internal/obat/services"
	resepControllers "github.com/c14220110/apotek-antrian-backend/internal/resep/controllers"
	resepRoutes "github.com/c14220110/apotek-antrian-backend/internal/resep/routes"
	resepServices "github.com/c14220110/apotek-antrian-backend/internal/resep/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
	"github.com/c14220110/apotek-antrian-backend/ws"
)

// Dependencies komponen bersama yang dibuat di main.
type Dependencies struct {
	DB         *sql.DB
	Log        zerolog.Logger
	Tokens     *utils.TokenIssuer
	Hub        *ws.Hub
	Reconciler *antrianServices.Reconciler
	Tickets    *antrianServices.TicketGenerator
}

// Init menginisialisasi semua routes menggunakan Echo framework. AntrianService
// dikembalikan supaya main bisa menjalankan resync berkala.
func Init(e *echo.Echo, d Dependencies) *antrianServices.AntrianService {
	// Inisialisasi service
	resepService := resepServices.NewResepService(d.DB, d.Log)
	antrianService := antrianServices.NewAntrianService(d.DB, d.Reconciler, d.Tickets, resepService, d.Hub, d.Log)
	obatService := obatServices.NewObatService(d.DB, d.Log)
	metricsService := metricsServices.NewMetricsService(d.DB)
	authService := authServices.NewAuthService(d.DB, d.Tokens, d.Log)

	// Inisialisasi controller dengan service yang sesuai
	antrianController := antrianControllers.NewAntrianController(antrianService)
	resepController := resepControllers.NewResepController(resepService)
	obatController := obatControllers.NewObatController(obatService)
	metricsController := metricsControllers.NewMetricsController(metricsService)
	authController := authControllers.NewAuthController(authService)

	jwt := middlewares.JWTMiddleware(d.Tokens)

	// Grup API utama
	api := e.Group("/api")
	authRoutes.RegisterAuthRoutes(api, authController, jwt)
	antrianRoutes.RegisterAntrianRoutes(api, antrianController, jwt)
	resepRoutes.RegisterResepRoutes(api, resepController, jwt)
	obatRoutes.RegisterObatRoutes(api, obatController, jwt)
	metricsRoutes.RegisterMetricsRoutes(api, metricsController, jwt)

	// Push channel antrian
	e.GET("/ws", ws.ServeWS(d.Hub))

	return antrianService
}
