package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/api/http/middleware"
	"github.com/enspm-hub/hub-backend/internal/auth"
	authhttp "github.com/enspm-hub/hub-backend/internal/auth/http"
	authmw "github.com/enspm-hub/hub-backend/internal/auth/middleware"
	authsvc "github.com/enspm-hub/hub-backend/internal/auth/service"
	audithttp "github.com/enspm-hub/hub-backend/internal/audit/http"
	groupshttp "github.com/enspm-hub/hub-backend/internal/groups/http"
	groupssvc "github.com/enspm-hub/hub-backend/internal/groups/service"
	"github.com/enspm-hub/hub-backend/internal/obs"
	opphttp "github.com/enspm-hub/hub-backend/internal/opportunities/http"
	oppsvc "github.com/enspm-hub/hub-backend/internal/opportunities/service"
	orgshttp "github.com/enspm-hub/hub-backend/internal/organisations/http"
	orgssvc "github.com/enspm-hub/hub-backend/internal/organisations/service"
	refscache "github.com/enspm-hub/hub-backend/internal/references/cache"
	refshttp "github.com/enspm-hub/hub-backend/internal/references/http"
	refssvc "github.com/enspm-hub/hub-backend/internal/references/service"
	"github.com/enspm-hub/hub-backend/internal/uploads"
	usershttp "github.com/enspm-hub/hub-backend/internal/users/http"
	userssvc "github.com/enspm-hub/hub-backend/internal/users/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	MediaRoot      string
	AllowedOrigins []string
	DB             *pgxpool.Pool
	Cache          *redis.Client
	Tokens         *auth.Manager
}

// BuildRouter assembles the middleware chain, constructs every module's
// service and handler once, and mounts them under /api/v1.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ClientMetaMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.NewRateLimiter(5, 20, 30).Middleware())
	r.Use(obs.Instrument())

	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Cache).RegisterRoutes(r)
	r.GET("/metrics", obs.Handler())

	media := uploads.NewStore(dep.MediaRoot)
	usersSvc := userssvc.NewService(dep.DB, media)
	authSvc := authsvc.NewService(dep.DB, dep.Tokens)
	orgsSvc := orgssvc.NewService(dep.DB, media)
	groupsSvc := groupssvc.NewService(dep.DB, media)
	oppSvc := oppsvc.NewService(dep.DB)
	refsSvc := refssvc.NewService(dep.DB, refscache.New(dep.Cache))

	requireAuth := authmw.RequireAuth(dep.Tokens, usersSvc)
	optionalAuth := authmw.OptionalAuth(dep.Tokens, usersSvc)
	requireAdmin := authmw.RequireSiteAdmin()

	api := r.Group("/api/v1")
	authhttp.RegisterRoutes(api, authhttp.NewHandler(authSvc), requireAuth)
	usershttp.RegisterRoutes(api, usershttp.NewHandler(usersSvc), requireAuth, requireAdmin)
	orgshttp.RegisterRoutes(api, orgshttp.NewHandler(orgsSvc), optionalAuth, requireAuth, requireAdmin)
	opphttp.RegisterRoutes(api, opphttp.NewHandler(oppSvc), optionalAuth, requireAuth, requireAdmin)
	groupshttp.RegisterRoutes(api, groupshttp.NewHandler(groupsSvc), optionalAuth, requireAuth, requireAdmin)
	refshttp.RegisterRoutes(api, refshttp.NewHandler(refsSvc), requireAuth, requireAdmin)
	audithttp.RegisterRoutes(api, audithttp.NewHandler(dep.DB), requireAuth, requireAdmin)

	// Uploaded photos and logos are served straight off disk.
	r.Static("/media", dep.MediaRoot)

	return r
}
