package coingeckoprices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuoter(handler http.HandlerFunc) (*Quoter, *httptest.Server) {
	server := httptest.NewServer(handler)
	quoter := NewQuoter()
	quoter.BaseURL = server.URL
	return quoter, server
}

func TestQuoteMany(t *testing.T) {
	quoter, server := newTestQuoter(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query().Get("ids")
		assert.Contains(t, ids, "bitcoin")
		assert.Contains(t, ids, "ethereum")
		w.Write([]byte(`{"bitcoin":{"usd":43000.5},"ethereum":{"usd":2250.25}}`))
	})
	defer server.Close()

	quotes, err := quoter.QuoteMany(context.Background(), []string{"BTC", "ETH"})
	require.NoError(t, err)
	assert.Equal(t, 43000.5, quotes["BTC"].Value)
	assert.Equal(t, 2250.25, quotes["ETH"].Value)
}

func TestQuote_UnknownSymbolFallsBackToLowercaseID(t *testing.T) {
	quoter, server := newTestQuoter(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pepe", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"pepe":{"usd":0.0000012}}`))
	})
	defer server.Close()

	quote, err := quoter.Quote(context.Background(), "PEPE")
	require.NoError(t, err)
	assert.Equal(t, 0.0000012, quote.Value)
}

func TestQuote_NotFound(t *testing.T) {
	quoter, server := newTestQuoter(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer server.Close()

	_, err := quoter.Quote(context.Background(), "XYZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price not found")
}

func TestQuoteMany_ServerError(t *testing.T) {
	quoter, server := newTestQuoter(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := quoter.QuoteMany(context.Background(), []string{"BTC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}
