package router

import (
	"time"

	"arelyz/internal/config"
	"arelyz/internal/handler"
	"arelyz/internal/infra"
	"arelyz/internal/middleware"
	"arelyz/internal/repository"
	"arelyz/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	rolRecepcion     = "recepcion"
	rolAdministrador = "administrador"
)

// Deps are the process-wide collaborators built in main.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Exports  service.ExportEnqueuer
	MailerCB *infra.CircuitBreaker
	Location *time.Location
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute)) // 600 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(d.DB)
	periodoRepo := repository.NewPeriodoRepository(d.DB)
	cierreRepo := repository.NewCierreRepository(d.DB)
	arqueoRepo := repository.NewArqueoRepository(d.DB)
	borradores := repository.NewBorradorStore(d.Redis, cfg.ArqueoDraftTTL)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	agregadorSvc := service.NewAgregadorService(periodoRepo, d.Location)
	arqueoSvc := service.NewArqueoService(agregadorSvc, cierreRepo, borradores, d.Exports, service.ArqueoOptions{
		CommitTimeout: cfg.ArqueoCommitTimeout,
	})
	historialSvc := service.NewHistorialService(arqueoRepo, d.Location, cfg.ArqueoHistoryLimit, cfg.BusinessName)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	arqueoH := handler.NewArqueoHandler(arqueoSvc, agregadorSvc)
	historialH := handler.NewHistorialHandler(historialSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.MailerCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	staff := middleware.RequireRole(rolRecepcion, rolAdministrador)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", authH.Me)

		arq := v1.Group("/arqueos", staff)
		{
			arq.POST("/borradores", arqueoH.Iniciar)
			arq.GET("/borradores/:id", arqueoH.Obtener)
			arq.DELETE("/borradores/:id", arqueoH.Cancelar)
			arq.PUT("/borradores/:id/conteo", arqueoH.ActualizarConteo)
			arq.POST("/borradores/:id/confirmar", arqueoH.Confirmar)
			arq.POST("/borradores/:id/aceptar", arqueoH.Aceptar)
			arq.GET("/totales", arqueoH.Totales)

			arq.GET("", historialH.Listar)
			arq.GET("/resumen", historialH.Resumen)
			arq.GET("/:id", historialH.Obtener)
			arq.GET("/:id/export", historialH.Exportar)
		}

		v1.GET("/reportes/mensual", middleware.RequireRole(rolAdministrador), historialH.ReporteMensual)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
