package marketplace

import (
	"sync"
	"time"
)

// expiryMargin is subtracted from the advertised token lifetime so a token
// is never used right at its expiry boundary.
const expiryMargin = 60 * time.Second

// tokenCache holds one token together with the credential identity it was
// minted for, so a token never outlives a credential change.
type tokenCache struct {
	mu        sync.Mutex
	identity  string
	token     string
	expiresAt time.Time
}

func (c *tokenCache) get(identity string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || c.identity != identity || !now.Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *tokenCache) set(identity, token string, lifetime time.Duration, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = identity
	c.token = token
	c.expiresAt = now.Add(lifetime - expiryMargin)
}

func (c *tokenCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = ""
	c.token = ""
	c.expiresAt = time.Time{}
}
