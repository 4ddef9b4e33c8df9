package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/handlers"
	"dwellmetrics/api/metrics"
	"dwellmetrics/api/middleware"
	"dwellmetrics/api/utils"
)

type routerDeps struct {
	auth     *handlers.AuthHandlers
	tracking *handlers.TrackingHandlers
	tokens   *utils.TokenIssuer
	apiKey   string
	origin   string
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   logrus.FieldLogger
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.logger), d.metrics.Middleware())
	r.Use(middleware.CORSMiddleware(d.origin))

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler(d.gatherer)))

	api := r.Group("/api")
	{
		api.POST("/signup", d.auth.Signup)
		api.POST("/login", d.auth.Login)
		api.POST("/logout", d.auth.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(d.tokens, d.apiKey, d.logger))
		{
			protected.GET("/profile", d.auth.Profile)
			protected.POST("/track", d.tracking.TrackEvents)

			stats := protected.Group("/stats")
			{
				stats.GET("/me", d.tracking.GetMyTrackingData)
				stats.GET("/paths", d.tracking.GetUniquePaths)
				stats.GET("/sessions", d.tracking.GetSessions)
				stats.GET("/tracking", middleware.AdminRequired(), d.tracking.GetTrackingData)
			}
		}
	}
	return r
}
