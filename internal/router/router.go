package router

import (
	"github.com/DavidJaure/CRUDapiDB/internal/config"
	"github.com/DavidJaure/CRUDapiDB/internal/handler"
	"github.com/DavidJaure/CRUDapiDB/internal/middleware"
	"github.com/DavidJaure/CRUDapiDB/internal/repository"
	"github.com/DavidJaure/CRUDapiDB/internal/security"
	"github.com/DavidJaure/CRUDapiDB/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; the login limiter then counts attempts in memory.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		log.Error().Err(err).Msg("invalid TRUSTED_PROXIES, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())

	// ── Security ─────────────────────────────────────────────────────────────
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())

	var attempts middleware.AttemptStore = middleware.NewMemoryStore()
	if rdb != nil {
		attempts = middleware.NewRedisStore(rdb)
	}
	loginLimiter := middleware.NewLoginLimiter(attempts, cfg.LoginRateLimit)

	// ── Repositories ─────────────────────────────────────────────────────────
	biciusuarioRepo := repository.NewBiciusuarioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(biciusuarioRepo, tokens, cfg.BcryptCost)
	perfilSvc := service.NewPerfilService(biciusuarioRepo, cfg.BcryptCost)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	biciusuariosH := handler.NewBiciusuariosHandler(perfilSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", loginLimiter.Handler(), authH.Login)
	}

	// Protected routes: reads need a token, writes need the token owner.
	bici := r.Group("/biciusuarios", middleware.JWTAuth(tokens))
	{
		bici.GET("", biciusuariosH.Listar)
		bici.GET("/:id", biciusuariosH.ObtenerPorID)
		bici.PUT("/:id", middleware.RequireOwner("id"), biciusuariosH.Actualizar)
		bici.DELETE("/:id", middleware.RequireOwner("id"), biciusuariosH.Eliminar)
	}

	return r
}
