package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

type PriceHandler struct {
	snapshots *services.SnapshotService
	store     services.SnapshotStore
	cache     *cache.Cache
}

func NewPriceHandler(snapshots *services.SnapshotService, store services.SnapshotStore, responses *cache.Cache) *PriceHandler {
	return &PriceHandler{
		snapshots: snapshots,
		store:     store,
		cache:     responses,
	}
}

type snapshotResponse struct {
	Date string                 `json:"snapshot_date"`
	Rows []models.PriceSnapshot `json:"rows"`
}

// GetLatestSnapshot returns every row recorded on the most recent snapshot date.
func (h *PriceHandler) GetLatestSnapshot(c *gin.Context) {
	ctx := c.Request.Context()
	latest, err := h.store.LatestDate(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	rows, err := h.store.RowsForDate(ctx, latest)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshotResponse{Date: latest, Rows: rows})
}

// GetSnapshotDates lists the stored snapshot dates in ascending order.
func (h *PriceHandler) GetSnapshotDates(c *gin.Context) {
	dates, err := h.store.Dates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// TakeSnapshot records today's prices immediately instead of waiting for the
// scheduled run.
func (h *PriceHandler) TakeSnapshot(c *gin.Context) {
	result, err := h.snapshots.ForceTakeSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	// Cached dashboards were built against the previous ledger
	h.cache.Flush()
	c.JSON(http.StatusCreated, result)
}
