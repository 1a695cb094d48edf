package fidelityclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"
)

func newTestServer(t *testing.T, tokenCalls *int, handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			*tokenCalls++
			require.NoError(t, r.ParseForm())
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok-123",
				"token_type":   "bearer",
				"expires_in":   3600,
			})
			return
		}
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		handler(w, r)
	}))
}

func newTestClient(server *httptest.Server) *Client {
	c := New(platforms.Credentials{Key: "client-id", Secret: "client-secret"})
	c.BaseURL = server.URL
	c.TokenURL = server.URL + "/oauth/token"
	return c
}

func TestClient_Positions(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/positions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(positionsResponse{Positions: []positionEntry{
			{Symbol: "aapl", SecurityType: "STOCK", Quantity: 10, CurrentPrice: 190, CostBasis: 1500},
			{Symbol: "VTI", SecurityType: "ETF", Quantity: 4, CurrentPrice: 250, CostBasis: 800},
		}})
	})
	defer server.Close()

	client := newTestClient(server)
	positions, err := client.Positions(context.Background())
	require.NoError(t, err)

	require.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].AssetSymbol)
	assert.Equal(t, "stock", positions[0].AssetType)
	assert.Equal(t, 150.0, positions[0].AveragePrice) // costBasis / quantity
	assert.Equal(t, "etf", positions[1].AssetType)
	assert.Equal(t, 200.0, positions[1].AveragePrice)
}

func TestClient_TokenIsCachedAcrossCalls(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(positionsResponse{})
	})
	defer server.Close()

	client := newTestClient(server)
	for i := 0; i < 3; i++ {
		_, err := client.Positions(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tokenCalls)
}

func TestClient_TokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	client := New(platforms.Credentials{Key: "bad", Secret: "bad"})
	client.BaseURL = server.URL
	client.TokenURL = server.URL + "/oauth/token"

	_, err := client.Positions(context.Background())
	var authErr *platforms.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, platforms.PlatformFidelity, authErr.Platform)
}

func TestClient_Trades(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "2024-01-15", r.URL.Query().Get("startDate"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactionsResponse{Transactions: []transactionEntry{
			{Type: "BUY", Symbol: "aapl", Quantity: 5, Price: 180, TransactionDate: "2024-02-01T14:30:00Z"},
			{Type: "SELL", Symbol: "msft", Quantity: 2, Price: 400, TransactionDate: "2024-02-03"},
		}})
	})
	defer server.Close()

	client := newTestClient(server)
	since := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	trades, err := client.Trades(context.Background(), &since)
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, "buy", trades[0].Type)
	assert.Equal(t, "AAPL", trades[0].AssetSymbol)
	assert.Equal(t, time.Date(2024, 2, 1, 14, 30, 0, 0, time.UTC), trades[0].Timestamp)
	assert.Equal(t, "sell", trades[1].Type)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), trades[1].Timestamp)
}

func TestClient_APIError(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Positions(context.Background())

	var apiErr *platforms.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
