package restapi

import (
	"net/http"

	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// SetupRouter builds the gin engine with every route registered.
func SetupRouter(h *DashboardHandler, swagger configloader.SwaggerConfig, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/dashboard", h.GetDashboardHandler)
		apiV1.POST("/dashboard/refresh", h.RefreshHandler)

		apiV1.PUT("/session/account", h.ConnectAccountHandler)
		apiV1.DELETE("/session/account", h.DisconnectAccountHandler)
		apiV1.PUT("/session/cluster", h.SelectClusterHandler)

		apiV1.GET("/clusters", h.ListClustersHandler)
		apiV1.GET("/portfolios/:address", h.GetPortfolioHandler)
		apiV1.GET("/tokens/:mint", h.GetTokenHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", swagger.SpecFile)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
		zapLogger.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	return router
}
