package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPageSignature(t *testing.T) {
	pageA := []Observation{{ExternalID: "1"}, {ExternalID: "2"}}
	pageB := []Observation{{ExternalID: "1"}, {ExternalID: "2"}}
	pageC := []Observation{{ExternalID: "2"}, {ExternalID: "1"}}

	if pageSignature(pageA) != pageSignature(pageB) {
		t.Error("identical pages should share a signature")
	}
	if pageSignature(pageA) == pageSignature(pageC) {
		t.Error("signature must be order sensitive")
	}
	if pageSignature(nil) != "" {
		t.Error("empty page signature should be empty")
	}
}

func TestPageSignatureFallsBackToTitle(t *testing.T) {
	a := []Observation{{Title: "Halo 3"}}
	b := []Observation{{Title: "halo 3"}}
	if pageSignature(a) != pageSignature(b) {
		t.Error("title-keyed signatures should be case insensitive")
	}
}

func TestIsShortPage(t *testing.T) {
	tests := []struct {
		size, first int
		want        bool
	}{
		{50, 50, false},
		{49, 50, true},
		{51, 50, false},
		{10, 0, false},
	}
	for _, tt := range tests {
		if got := isShortPage(tt.size, tt.first); got != tt.want {
			t.Errorf("isShortPage(%d, %d) = %v, want %v", tt.size, tt.first, got, tt.want)
		}
	}
}

func catalogRow(id int, title string, price float64) string {
	return fmt.Sprintf(`<tr id="product-%d">
<td class="title"><a href="/game/test/%d">%s</a></td>
<td id="used_price" class="price">$%.2f</td>
</tr>`, id, id, title, price)
}

func TestScrapePlatformCatalogStopsOnShortPage(t *testing.T) {
	pages := map[string]string{
		"1": catalogRow(1, "Game A", 10) + catalogRow(2, "Game B", 20),
		"2": catalogRow(3, "Game C", 30) + catalogRow(4, "Game D", 40),
		"3": catalogRow(5, "Game E", 50),
		"4": catalogRow(6, "Game F", 60) + catalogRow(7, "Game G", 70),
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<table>"+pages[r.URL.Query().Get("page")]+"</table>")
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, WithPageDelay(time.Millisecond), WithRetryWaitUnit(time.Millisecond))
	rows, err := client.ScrapePlatformCatalog(context.Background(), "nintendo-switch", "Nintendo Switch")
	if err != nil {
		t.Fatalf("ScrapePlatformCatalog returned error: %v", err)
	}
	// Pages 1-3 collected; the short page 3 terminates the walk before 4.
	if len(rows) != 5 {
		t.Fatalf("collected %d rows, want 5", len(rows))
	}
	for _, row := range rows {
		if row.Platform != "nintendo switch" {
			t.Errorf("row platform = %q, want %q", row.Platform, "nintendo switch")
		}
	}
}

func TestScrapePlatformCatalogStopsOnRepeatedPage(t *testing.T) {
	page := catalogRow(1, "Game A", 10) + catalogRow(2, "Game B", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The site keeps serving the same page regardless of the cursor.
		fmt.Fprint(w, "<table>"+page+"</table>")
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, WithPageDelay(time.Millisecond))
	rows, err := client.ScrapePlatformCatalog(context.Background(), "wii", "Wii")
	if err != nil {
		t.Fatalf("ScrapePlatformCatalog returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("collected %d rows, want 2 (repeat detection)", len(rows))
	}
}

func TestScrapePlatformCatalogStopsOnEmptyPage(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, "<table>"+catalogRow(1, "Game A", 10)+"</table>")
			return
		}
		fmt.Fprint(w, "<table></table>")
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, WithPageDelay(time.Millisecond))
	rows, err := client.ScrapePlatformCatalog(context.Background(), "nes", "NES")
	if err != nil {
		t.Fatalf("ScrapePlatformCatalog returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("collected %d rows, want 1", len(rows))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
}

func TestScrapePlatformCatalogHonorsPageCap(t *testing.T) {
	page := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		// Distinct full pages forever.
		fmt.Fprint(w, "<table>"+catalogRow(page, fmt.Sprintf("Game %d", page), 10)+"</table>")
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, WithPageDelay(time.Millisecond), WithMaxPages(3))
	rows, err := client.ScrapePlatformCatalog(context.Background(), "psp", "PSP")
	if err != nil {
		t.Fatalf("ScrapePlatformCatalog returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("collected %d rows, want 3 (page cap)", len(rows))
	}
}

func TestScrapeCatalogPageSoftFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL)
	rows, err := client.ScrapeCatalogPage(context.Background(), "unknown", 1)
	if err != nil {
		t.Fatalf("expected soft failure, got error: %v", err)
	}
	if rows != nil {
		t.Fatalf("expected nil rows, got %v", rows)
	}
}
