package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newJSONServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestReferenceLinksDedupAndCap(t *testing.T) {
	tokenCalls := 0
	var gotBody, gotClientID string
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			tokenCalls++
			if r.URL.Query().Get("grant_type") != "client_credentials" {
				t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
			}
			fmt.Fprint(w, `{"access_token":"twitch-tok","expires_in":5000}`)
		case "/games":
			raw, _ := io.ReadAll(r.Body)
			gotBody = string(raw)
			gotClientID = r.Header.Get("Client-ID")
			fmt.Fprint(w, `[
                {"id":1,"name":"Mario Kart 8 Deluxe",
                 "cover":{"url":"//images.igdb.com/t_thumb/mk8.jpg"},
                 "platforms":[{"name":"Nintendo Switch"}],
                 "websites":[
                    {"url":"https://www.nintendo.com/mk8","category":1},
                    {"url":"https://en.wikipedia.org/wiki/MK8","category":3},
                    {"url":"https://www.nintendo.com/mk8","category":1}
                ]},
                {"id":2,"name":"Mario Kart 8","websites":[
                    {"url":"https://a.example","category":1},
                    {"url":"https://b.example","category":1},
                    {"url":"https://c.example","category":1},
                    {"url":"https://d.example","category":1},
                    {"url":"https://e.example","category":1}
                ]}
            ]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client := New("cid", "csecret",
		WithAuthURL(server.URL+"/oauth2/token"),
		WithBaseURL(server.URL))

	result, err := client.Lookup(context.Background(), "Mario Kart 8 Deluxe", "Nintendo Switch")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result == nil {
		t.Fatal("Lookup returned nil result")
	}
	if result.Name != "Mario Kart 8 Deluxe" {
		t.Errorf("name = %q", result.Name)
	}
	if len(result.Platforms) != 1 || result.Platforms[0] != "Nintendo Switch" {
		t.Errorf("platforms = %v", result.Platforms)
	}
	if result.CoverURL != "https://images.igdb.com/t_cover_big/mk8.jpg" {
		t.Errorf("cover = %q", result.CoverURL)
	}
	links := result.ReferenceLinks
	if len(links) != 6 {
		t.Fatalf("links = %d, want capped at 6: %v", len(links), links)
	}
	if links[0] != "https://www.nintendo.com/mk8" || links[1] != "https://en.wikipedia.org/wiki/MK8" {
		t.Errorf("links = %v, want order preserved with duplicates dropped", links)
	}
	if !strings.Contains(gotBody, `search "Mario Kart 8 Deluxe Nintendo Switch"`) {
		t.Errorf("query body = %q", gotBody)
	}
	if !strings.Contains(gotBody, "cover.url") || !strings.Contains(gotBody, "platforms.name") {
		t.Errorf("query body missing context fields: %q", gotBody)
	}
	if gotClientID != "cid" {
		t.Errorf("Client-ID header = %q", gotClientID)
	}

	if _, err := client.ReferenceLinks(context.Background(), "Zelda", ""); err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("token calls = %d, want cached token reused", tokenCalls)
	}
}

func TestReferenceLinksNoMatches(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			fmt.Fprint(w, `{"access_token":"tok","expires_in":5000}`)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	client := New("cid", "csecret", WithAuthURL(server.URL+"/oauth2/token"), WithBaseURL(server.URL))
	links, err := client.ReferenceLinks(context.Background(), "Nonexistent", "")
	if err != nil {
		t.Fatalf("ReferenceLinks failed: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("links = %v, want none", links)
	}
}

func TestReferenceLinksNotConfigured(t *testing.T) {
	client := New("", "")
	if client.Configured() {
		t.Error("Configured() = true for empty credentials")
	}
	if _, err := client.ReferenceLinks(context.Background(), "Zelda", ""); err != ErrNotConfigured {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
