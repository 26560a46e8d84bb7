package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/mtg-tracker/backend/internal/api/handlers"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Scryfall    *services.ScryfallService
	Cards       services.CardResolver
	Dashboard   *services.DashboardService
	Snapshots   *services.SnapshotService
	Store       services.SnapshotStore
	Collection  services.CollectionSource
	CacheTTL    time.Duration
	CORSOrigins []string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogging())

	config := cors.DefaultConfig()
	config.AllowOrigins = deps.CORSOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Dashboards are flushed whenever a new snapshot lands
	responses := cache.New(handlers.DashboardCacheTTL, 2*handlers.DashboardCacheTTL)

	cardHandler := handlers.NewCardHandler(deps.Scryfall, deps.Cards, deps.CacheTTL)
	collectionHandler := handlers.NewCollectionHandler(deps.Dashboard, deps.Collection, responses)
	priceHandler := handlers.NewPriceHandler(deps.Snapshots, deps.Store, responses)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/:set/:number", cardHandler.GetCard)
		}

		api.GET("/dashboard", collectionHandler.GetDashboard)
		api.GET("/history", collectionHandler.GetValueHistory)

		snapshots := api.Group("/snapshots")
		{
			snapshots.GET("", priceHandler.GetSnapshotDates)
			snapshots.GET("/latest", priceHandler.GetLatestSnapshot)
			snapshots.POST("", priceHandler.TakeSnapshot)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
