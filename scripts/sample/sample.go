// Seeds a running server with a demo user, portfolio, holdings and
// transactions, then prints the computed metrics. Useful for manual testing.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080/api/v1"

var token string

type portfolio struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type holding struct {
	ID          int64  `json:"id"`
	AssetSymbol string `json:"asset_symbol"`
}

func main() {
	email := fmt.Sprintf("demo+%d@example.com", time.Now().Unix())

	post("/auth/register", map[string]any{
		"email":     email,
		"password":  "demo-password",
		"full_name": "Demo User",
	}, nil)
	fmt.Println("Registered", email)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	post("/auth/token", map[string]any{
		"email":    email,
		"password": "demo-password",
	}, &tokens)
	token = tokens.AccessToken
	fmt.Println("Logged in")

	var p portfolio
	post("/portfolios", map[string]any{
		"name":        "Demo Portfolio",
		"description": "Seeded sample data",
	}, &p)
	fmt.Printf("Created portfolio %d\n", p.ID)

	seed := []map[string]any{
		{"asset_symbol": "BTC", "asset_type": "crypto", "quantity": 0.5, "average_price": 45000.0},
		{"asset_symbol": "ETH", "asset_type": "crypto", "quantity": 4.0, "average_price": 2400.0},
		{"asset_symbol": "AAPL", "asset_type": "stock", "quantity": 25.0, "average_price": 180.0},
		{"asset_symbol": "VTI", "asset_type": "etf", "quantity": 40.0, "average_price": 240.0},
	}

	for _, body := range seed {
		var h holding
		post(fmt.Sprintf("/portfolios/%d/holdings", p.ID), body, &h)
		fmt.Println("Added holding", h.AssetSymbol)

		post("/transactions", map[string]any{
			"holding_id":       h.ID,
			"transaction_type": "buy",
			"quantity":         body["quantity"],
			"price":            body["average_price"],
		}, nil)
	}

	var metrics map[string]any
	get(fmt.Sprintf("/portfolios/%d/metrics", p.ID), &metrics)
	pretty, _ := json.MarshalIndent(metrics, "", "  ")
	fmt.Printf("Metrics:\n%s\n", pretty)

	var report map[string]any
	post("/sync", nil, &report)
	fmt.Printf("Sync report: %v\n", report)
}

func post(path string, body any, out any) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatal(err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		log.Fatal(err)
	}
	send(req, out)
}

func get(path string, out any) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		log.Fatal(err)
	}
	send(req, out)
}

func send(req *http.Request, out any) {
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Fatalf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatal(err)
		}
	}
}
