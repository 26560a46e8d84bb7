package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/codyseavey/mtg-tracker/backend/internal/metrics"
	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

const defaultScryfallBaseURL = "https://api.scryfall.com"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CardFetcher retrieves the raw catalog record for one printing.
type CardFetcher interface {
	FetchCard(ctx context.Context, key models.ItemKey) ([]byte, error)
}

type ScryfallService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewScryfallService builds a client with a fixed per-request timeout. Outgoing
// requests are paced to rps; an empty baseURL means the public API.
func NewScryfallService(baseURL string, timeout time.Duration, rps float64) *ScryfallService {
	if baseURL == "" {
		baseURL = defaultScryfallBaseURL
	}
	if rps <= 0 {
		rps = 10
	}
	return &ScryfallService{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type scryfallSearchResponse struct {
	Data       []models.CatalogCard `json:"data"`
	Object     string               `json:"object"`
	TotalCards int                  `json:"total_cards"`
	HasMore    bool                 `json:"has_more"`
}

// FetchCard returns the raw JSON of GET /cards/{set}/{number}. A 404 is
// ErrCardNotFound; any other failure is ErrCatalogUnavailable. Never retried.
func (s *ScryfallService) FetchCard(ctx context.Context, key models.ItemKey) ([]byte, error) {
	// Scryfall expects path params, so we must PathEscape.
	reqURL := fmt.Sprintf("%s/cards/%s/%s", s.baseURL,
		url.PathEscape(key.SetCode), url.PathEscape(key.CollectorNumber))

	body, status, err := s.get(ctx, "card", reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, key, err)
	}

	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, key)
	default:
		return nil, fmt.Errorf("%w: %s: scryfall API returned status %d", ErrCatalogUnavailable, key, status)
	}
}

// SearchQuery turns user input into a Scryfall query. A bare card name becomes an
// exact-name match; anything already using search syntax passes through.
func SearchQuery(input string) string {
	q := strings.TrimSpace(input)
	if strings.ContainsAny(q, `:!"`) {
		return q
	}
	return `!"` + q + `"`
}

// SearchCardPrintings lists printings matching query, newest release first.
// A 404 from Scryfall means no matches and yields an empty result.
func (s *ScryfallService) SearchCardPrintings(ctx context.Context, query string, limit int) (*models.CardSearchResult, error) {
	params := url.Values{}
	params.Set("q", SearchQuery(query))
	params.Set("unique", "prints")
	params.Set("order", "released")
	params.Set("dir", "desc")
	reqURL := s.baseURL + "/cards/search?" + params.Encode()

	body, status, err := s.get(ctx, "search", reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", ErrCatalogUnavailable, query, err)
	}

	if status == http.StatusNotFound {
		return &models.CardSearchResult{
			Cards: []models.CatalogCard{},
		}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: search %q: scryfall API returned status %d", ErrCatalogUnavailable, query, status)
	}

	var searchResp scryfallSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode scryfall response: %v", ErrCatalogUnavailable, err)
	}

	cards := searchResp.Data
	if cards == nil {
		cards = []models.CatalogCard{}
	}
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}

	return &models.CardSearchResult{
		Cards:      cards,
		TotalCount: searchResp.TotalCards,
		HasMore:    searchResp.HasMore || len(cards) < len(searchResp.Data),
	}, nil
}

func (s *ScryfallService) get(ctx context.Context, endpoint, reqURL string) ([]byte, int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mtg-tracker/1.0")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.CatalogRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, outcome(resp.StatusCode)).Inc()
	return body, resp.StatusCode, nil
}

func outcome(status int) string {
	switch {
	case status == http.StatusOK:
		return "ok"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "error"
	}
}
