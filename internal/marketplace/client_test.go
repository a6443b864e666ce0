package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const tokenJSON = `{"access_token":"tok-1","expires_in":7200}`

func newJSONServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSearchPricesParsesAndFilters(t *testing.T) {
	tokenCalls := 0
	var gotFilter, gotAuth string
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			tokenCalls++
			if user, pass, ok := r.BasicAuth(); !ok || user != "id" || pass != "secret" {
				t.Errorf("basic auth = %q %q", user, pass)
			}
			fmt.Fprint(w, tokenJSON)
		case "/item_summary/search":
			gotFilter = r.URL.Query().Get("filter")
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"total":4,"itemSummaries":[
                {"title":"a","price":{"value":"19.99","currency":"USD"}},
                {"title":"b","price":{"value":"21.00","currency":"USD"}},
                {"title":"c","price":{"value":"18.50","currency":"EUR"}},
                {"title":"d","price":{"value":"bogus","currency":"USD"}}
            ]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client := New("id", "secret",
		WithAuthURL(server.URL+"/token"),
		WithBaseURL(server.URL))

	prices, err := client.SearchPrices(context.Background(), "mario kart 8 deluxe", ConditionUsed)
	if err != nil {
		t.Fatalf("SearchPrices failed: %v", err)
	}
	if len(prices) != 2 || prices[0] != 19.99 || prices[1] != 21.00 {
		t.Errorf("prices = %v, want USD values only", prices)
	}
	if gotFilter != "conditionIds:{3000|4000|5000},priceCurrency:USD" {
		t.Errorf("filter = %q", gotFilter)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("auth header = %q", gotAuth)
	}

	if _, err := client.SearchPrices(context.Background(), "zelda", ConditionUsed); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("token calls = %d, want cached token reused", tokenCalls)
	}
}

func TestSearchPricesNewConditionFilter(t *testing.T) {
	var gotFilter string
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			fmt.Fprint(w, tokenJSON)
			return
		}
		gotFilter = r.URL.Query().Get("filter")
		fmt.Fprint(w, `{"total":0}`)
	})

	client := New("id", "secret", WithAuthURL(server.URL+"/token"), WithBaseURL(server.URL))
	prices, err := client.SearchPrices(context.Background(), "switch oled", ConditionNew)
	if err != nil {
		t.Fatalf("SearchPrices failed: %v", err)
	}
	if len(prices) != 0 {
		t.Errorf("prices = %v, want empty", prices)
	}
	if gotFilter != "conditionIds:{1000},priceCurrency:USD" {
		t.Errorf("filter = %q", gotFilter)
	}
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	tokenCalls := 0
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			tokenCalls++
			fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":120}`, tokenCalls)
			return
		}
		fmt.Fprint(w, `{"total":0}`)
	})

	clock := time.Now()
	client := New("id", "secret",
		WithAuthURL(server.URL+"/token"),
		WithBaseURL(server.URL),
		WithClock(func() time.Time { return clock }))

	if _, err := client.SearchPrices(context.Background(), "a", ConditionUsed); err != nil {
		t.Fatalf("first search failed: %v", err)
	}

	// 120s lifetime minus the 60s margin leaves the token valid for under 2 minutes.
	clock = clock.Add(2 * time.Minute)
	if _, err := client.SearchPrices(context.Background(), "b", ConditionUsed); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if tokenCalls != 2 {
		t.Errorf("token calls = %d, want refresh after expiry", tokenCalls)
	}
}

func TestUnauthorizedTriggersSingleRetry(t *testing.T) {
	tokenCalls, searchCalls := 0, 0
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			tokenCalls++
			fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":7200}`, tokenCalls)
			return
		}
		searchCalls++
		if searchCalls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"total":1,"itemSummaries":[{"title":"x","price":{"value":"5.00","currency":"USD"}}]}`)
	})

	client := New("id", "secret", WithAuthURL(server.URL+"/token"), WithBaseURL(server.URL))
	prices, err := client.SearchPrices(context.Background(), "q", ConditionUsed)
	if err != nil {
		t.Fatalf("SearchPrices failed: %v", err)
	}
	if len(prices) != 1 || tokenCalls != 2 {
		t.Errorf("prices = %v tokenCalls = %d, want retry with fresh token", prices, tokenCalls)
	}
}

func TestSearchPricesNotConfigured(t *testing.T) {
	client := New("", "")
	if client.Configured() {
		t.Error("Configured() = true for empty credentials")
	}
	_, err := client.SearchPrices(context.Background(), "q", ConditionUsed)
	if err != ErrNotConfigured {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
