package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"farebid/internal/handler"
	"farebid/internal/middleware"
	"farebid/internal/relay"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler         *handler.TripHandler
	BidHandler          *handler.BidHandler
	DriverHandler       *handler.DriverHandler
	SubscriptionHandler *handler.SubscriptionHandler
	UserHandler         *handler.UserHandler
	Hub                 *relay.Hub
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Event relay.
	router.GET("/ws", deps.Hub.ServeWS)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("/:id", deps.UserHandler.GetUser)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("/nearby", deps.TripHandler.ListNearby)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/accept", deps.TripHandler.AcceptTrip)
			trips.POST("/:id/status", deps.TripHandler.UpdateStatus)
			trips.POST("/:id/bids", deps.BidHandler.SubmitBid)
			trips.GET("/:id/bids", deps.BidHandler.ListBids)
		}

		// Bid routes.
		bids := v1.Group("/bids")
		{
			bids.POST("/:id/accept", deps.BidHandler.AcceptBid)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/vehicles", deps.DriverHandler.RegisterVehicle)
			drivers.GET("/:id/vehicles", deps.DriverHandler.ListVehicles)
			drivers.POST("/:id/subscription", deps.SubscriptionHandler.Pay)
			drivers.GET("/:id/subscription", deps.SubscriptionHandler.GetStatus)
			drivers.POST("/:id/wallet/topup", deps.SubscriptionHandler.TopUp)
		}

		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("/:id/approve", deps.DriverHandler.ApproveVehicle)
		}
	}

	return router
}
