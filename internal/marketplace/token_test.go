package marketplace

import (
	"testing"
	"time"
)

func TestTokenCacheScopedToIdentity(t *testing.T) {
	var cache tokenCache
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	cache.set("client-a", "tok-a", 10*time.Minute, now)

	if token, ok := cache.get("client-a", now.Add(time.Minute)); !ok || token != "tok-a" {
		t.Fatalf("get(client-a) = %q, %v, want cached token", token, ok)
	}
	if _, ok := cache.get("client-b", now.Add(time.Minute)); ok {
		t.Error("get(client-b) hit a token minted for different credentials")
	}
	if _, ok := cache.get("client-a", now.Add(10*time.Minute)); ok {
		t.Error("get past expiry margin returned a stale token")
	}

	cache.invalidate()
	if _, ok := cache.get("client-a", now.Add(time.Minute)); ok {
		t.Error("get after invalidate returned a token")
	}
}
