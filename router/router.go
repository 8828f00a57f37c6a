package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/smartmenu-api/config"
	"github.com/yeremiapane/smartmenu-api/controllers"
	"github.com/yeremiapane/smartmenu-api/hub"
	"github.com/yeremiapane/smartmenu-api/metrics"
	"github.com/yeremiapane/smartmenu-api/middlewares"
	"github.com/yeremiapane/smartmenu-api/services"
	"github.com/yeremiapane/smartmenu-api/utils"
	"gorm.io/gorm"
)

// Roles allowed to change tables.
var tableManagers = []string{"admin", "manager", "staff"}

// Deps is everything the HTTP layer needs. Hub and Metrics may be nil.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Log     logrus.FieldLogger
	Tokens  *utils.TokenManager
	Hub     *hub.Hub
	Metrics *metrics.Metrics
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()

	r.Use(middlewares.Recovery(d.Log))
	r.Use(middlewares.LoggerMiddleware(d.Log, d.Metrics))
	r.Use(middlewares.SecurityHeaders(cfg.IsRelease()))
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins, d.Log))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).RateLimit())

	qr := services.NewQRProvisioner(d.DB, cfg.FrontendURL)
	tableCtrl := controllers.NewTableController(d.DB, qr, d.Hub, d.Metrics, d.Log)
	userCtrl := controllers.NewUserController(d.DB, d.Tokens, cfg.ResetTokenTTL, !cfg.IsRelease(), d.Log)
	auth := middlewares.AuthMiddleware(d.Tokens)
	managers := middlewares.RequireRoles(tableManagers...)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Smart Menu API is running"})
	})

	// ----------------------------------------------------------------
	//                      TABLES
	// ----------------------------------------------------------------
	tables := api.Group("/tables")
	{
		tables.GET("", tableCtrl.GetAllTables)
		tables.GET("/lookup", tableCtrl.LookupTable)
		tables.GET("/:tableId/info", tableCtrl.GetTableInfo)
		tables.GET("/:tableId/qr", tableCtrl.GetTableQR)

		tables.POST("", auth, managers, tableCtrl.CreateTable)
		tables.PUT("/:tableId", auth, managers, tableCtrl.UpdateTable)
		tables.DELETE("/:tableId", auth, managers, tableCtrl.DeleteTable)
	}

	// ----------------------------------------------------------------
	//                      AUTH
	// ----------------------------------------------------------------
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middlewares.OptionalAuthMiddleware(d.Tokens), userCtrl.Register)
		authGroup.POST("/login", userCtrl.Login)
		authGroup.POST("/forgot-password", userCtrl.ForgotPassword)
		authGroup.POST("/reset-password", userCtrl.ResetPassword)
		authGroup.POST("/logout", auth, userCtrl.Logout)
		authGroup.GET("/me", auth, userCtrl.GetProfile)
	}

	if d.Hub != nil {
		wsCtrl := controllers.NewWSController(d.Hub, cfg.CORSOrigins, d.Log)
		r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Tokens), wsCtrl.Serve)
	}

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return r
}
