package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/config"
	"github.com/ArowuTest/forum-lottery-backend/internal/handlers"
	"github.com/ArowuTest/forum-lottery-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, lotteryHandler *handlers.LotteryHandler, store Pinger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		public.GET("/ready", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				slog.Warn("Readiness check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		})
	}

	// Protected routes
	protected := router.Group("/api/v1/lottery")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWT.Secret))
	{
		events := protected.Group("/events")
		{
			events.POST("", lotteryHandler.CreateEvent)
			events.GET("/:id", lotteryHandler.GetEvent)
			events.PUT("/:id", lotteryHandler.UpdateEvent)
			events.DELETE("/:id", lotteryHandler.DeleteEvent)
			events.POST("/:id/activate", lotteryHandler.ActivateEvent)
			events.POST("/:id/draw", lotteryHandler.Draw)
			events.POST("/:id/cancel", lotteryHandler.Cancel)
			events.GET("/:id/winners", lotteryHandler.ListWinners)
		}

		targets := protected.Group("/targets/:targetId")
		{
			targets.GET("/event", lotteryHandler.GetEventByTarget)
			targets.DELETE("", lotteryHandler.TargetDeleted)
			targets.POST("/contributions", lotteryHandler.RecordContribution)
			targets.DELETE("/contributions/:position", lotteryHandler.RemoveContribution)
		}
	}

	return router
}
