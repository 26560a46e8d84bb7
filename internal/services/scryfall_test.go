package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/mtg-tracker/backend/internal/models"
)

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Lightning Bolt", `!"Lightning Bolt"`},
		{"  Sol Ring ", `!"Sol Ring"`},
		{"t:goblin set:neo", "t:goblin set:neo"},
		{`!"Lightning Bolt"`, `!"Lightning Bolt"`},
	}

	for _, tt := range tests {
		if got := SearchQuery(tt.input); got != tt.want {
			t.Errorf("SearchQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScryfallFetchCard(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		switch r.URL.Path {
		case "/cards/neo/123":
			_, _ = w.Write(cardJSON("abc", "neo", "123", "Bolt", "common", "Instant", "0.50", "1.00"))
		case "/cards/neo/404":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	svc := NewScryfallService(srv.URL, 5*time.Second, 1000)
	ctx := context.Background()

	body, err := svc.FetchCard(ctx, models.NewItemKey("NEO", "123"))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id":"abc"`)
	assert.Equal(t, "/cards/neo/123", gotPath)

	_, err = svc.FetchCard(ctx, models.NewItemKey("neo", "404"))
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = svc.FetchCard(ctx, models.NewItemKey("neo", "500"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestScryfallFetchCardEscapesCollectorNumber(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write(cardJSON("x", "plst", "a/1", "X", "rare", "", "1", ""))
	}))
	defer srv.Close()

	svc := NewScryfallService(srv.URL, 5*time.Second, 1000)
	_, err := svc.FetchCard(context.Background(), models.NewItemKey("plst", "a/1"))
	require.NoError(t, err)
	assert.Equal(t, "/cards/plst/a%2F1", gotPath)
}

func TestScryfallUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := NewScryfallService(url, time.Second, 1000)
	_, err := svc.FetchCard(context.Background(), models.NewItemKey("neo", "1"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestScryfallSearchCardPrintings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") == `!"Nothing Here"` {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, `!"Lightning Bolt"`, q.Get("q"))
		assert.Equal(t, "prints", q.Get("unique"))
		assert.Equal(t, "released", q.Get("order"))
		assert.Equal(t, "desc", q.Get("dir"))
		_, _ = w.Write([]byte(`{"object":"list","total_cards":3,"has_more":false,"data":[
			{"id":"1","name":"Lightning Bolt","set":"2x2","collector_number":"117","prices":{"usd":"1.10","usd_foil":null}},
			{"id":"2","name":"Lightning Bolt","set":"sta","collector_number":"42","prices":{"usd":"3.00","usd_foil":"5.00"}},
			{"id":"3","name":"Lightning Bolt","set":"m11","collector_number":"149","prices":{"usd":null,"usd_foil":null}}
		]}`))
	}))
	defer srv.Close()

	svc := NewScryfallService(srv.URL, 5*time.Second, 1000)

	result, err := svc.SearchCardPrintings(context.Background(), "Lightning Bolt", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.True(t, result.HasMore)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, "2x2", result.Cards[0].Set)
	assert.Nil(t, result.Cards[0].Prices.USDFoil)

	empty, err := svc.SearchCardPrintings(context.Background(), "Nothing Here", 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Cards)
	assert.Equal(t, 0, empty.TotalCount)
}
