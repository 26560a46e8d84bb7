package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/codyseavey/mtg-tracker/backend/internal/metrics"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

// DashboardCacheTTL bounds how long a built dashboard is served from memory.
const DashboardCacheTTL = time.Minute

type CollectionHandler struct {
	dashboard  *services.DashboardService
	collection services.CollectionSource
	cache      *cache.Cache
}

func NewCollectionHandler(dashboard *services.DashboardService, collection services.CollectionSource, responses *cache.Cache) *CollectionHandler {
	return &CollectionHandler{
		dashboard:  dashboard,
		collection: collection,
		cache:      responses,
	}
}

// GetDashboard returns the valued collection with movers, breakdowns and history.
// Query: days (7), top (5), live (true), rank_by (delta), granularity (daily).
func (h *CollectionHandler) GetDashboard(c *gin.Context) {
	opts, err := dashboardOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := fmt.Sprintf("dashboard:%d:%d:%t:%s:%s", opts.WindowDays, opts.TopN, opts.LivePrices, opts.RankBy, opts.Granularity)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	positions, err := h.collection(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.CollectionPositions.Set(float64(len(positions)))

	dashboard, err := h.dashboard.Build(c.Request.Context(), positions, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cache.Set(key, dashboard, cache.DefaultExpiration)
	c.JSON(http.StatusOK, dashboard)
}

func dashboardOptions(c *gin.Context) (services.DashboardOptions, error) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 0 {
		return services.DashboardOptions{}, fmt.Errorf("days must be a non-negative integer")
	}
	top, err := strconv.Atoi(c.DefaultQuery("top", "5"))
	if err != nil || top < 0 {
		return services.DashboardOptions{}, fmt.Errorf("top must be a non-negative integer")
	}
	live, err := strconv.ParseBool(c.DefaultQuery("live", "true"))
	if err != nil {
		return services.DashboardOptions{}, fmt.Errorf("live must be true or false")
	}
	rankBy, err := services.ParseRankBy(c.DefaultQuery("rank_by", string(models.RankByDelta)))
	if err != nil {
		return services.DashboardOptions{}, err
	}
	granularity, err := services.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return services.DashboardOptions{}, err
	}

	return services.DashboardOptions{
		WindowDays:  days,
		TopN:        top,
		LivePrices:  live,
		RankBy:      rankBy,
		Granularity: granularity,
	}, nil
}

type valueHistoryResponse struct {
	Granularity         models.Granularity       `json:"granularity"`
	Points              []models.TimeSeriesPoint `json:"points"`
	InsufficientHistory bool                     `json:"insufficient_history"`
}

// GetValueHistory returns today's collection valued at every stored snapshot date.
func (h *CollectionHandler) GetValueHistory(c *gin.Context) {
	granularity, err := services.ParseGranularity(c.Query("granularity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	positions, err := h.collection(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	points, err := h.dashboard.History(c.Request.Context(), positions, granularity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, valueHistoryResponse{
		Granularity:         granularity,
		Points:              points,
		InsufficientHistory: services.InsufficientHistory(points),
	})
}
