package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 175
)

type CardHandler struct {
	scryfallService *services.ScryfallService
	resolver        services.CardResolver
	ttl             time.Duration
}

func NewCardHandler(scryfall *services.ScryfallService, resolver services.CardResolver, ttl time.Duration) *CardHandler {
	return &CardHandler{
		scryfallService: scryfall,
		resolver:        resolver,
		ttl:             ttl,
	}
}

// SearchCards lists printings matching q, newest first. A bare card name is
// matched exactly; anything with Scryfall syntax is passed through.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 175"})
			return
		}
		limit = n
	}

	result, err := h.scryfallService.SearchCardPrintings(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type cardResponse struct {
	Card      models.CatalogCard `json:"card"`
	Source    models.FetchSource `json:"source"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// GetCard returns one printing by set code and collector number, served from
// the price cache when fresh.
func (h *CardHandler) GetCard(c *gin.Context) {
	key := models.NewItemKey(c.Param("set"), c.Param("number"))
	if key.SetCode == "" || key.CollectorNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "set and collector number are required"})
		return
	}

	cached, source, err := h.resolver.Resolve(c.Request.Context(), key, h.ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cardResponse{
		Card:      cached.Card,
		Source:    source,
		FetchedAt: cached.FetchedAt,
	})
}
