package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"parkledger/internal/api/handler"
	"parkledger/internal/api/middleware"
	"parkledger/internal/service"
)

type Dependencies struct {
	Logger          *zap.Logger
	AuthService     *service.AuthService
	Ledger          service.ParkingLedger
	FeedbackService *service.FeedbackService
	AuthMiddleware  *middleware.AuthMiddleware
	WSManager       *handler.WebSocketManager
	Ping            handler.Pinger
}

func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	healthH := handler.NewHealthHandler(d.Ping)
	r.GET("/health", healthH.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMw := d.AuthMiddleware

	if d.WSManager != nil {
		wsHandler := handler.NewWebSocketHandler(d.WSManager)
		r.GET("/ws", authMw.Authenticate(), wsHandler.HandleWebSocket)
	}

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(d.AuthService)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMw.Authenticate())
	{
		parkingH := handler.NewParkingHandler(d.Ledger)
		parkingRoutes := protected.Group("/parking")
		{
			parkingRoutes.POST("/entry", parkingH.RecordEntry)
			parkingRoutes.POST("/exit", parkingH.RecordExit)
			parkingRoutes.GET("/active", parkingH.ListActive)
			parkingRoutes.GET("/history", parkingH.ListHistory)
			parkingRoutes.GET("/vehicle/:vehicleNumber", parkingH.GetActiveByVehicle)
		}

		protected.GET("/reports/summary", parkingH.Summary)

		feedbackH := handler.NewFeedbackHandler(d.FeedbackService)
		feedbackRoutes := protected.Group("/feedback")
		{
			feedbackRoutes.POST("", feedbackH.Submit)
			feedbackRoutes.GET("", feedbackH.List)
		}
	}
	return r
}
