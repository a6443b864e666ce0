package textutil

import (
	"regexp"
	"strings"
)

// noiseTokens are generic product-listing words that carry no identity signal
// and would otherwise penalize titles like "PlayStation 4 Console Bundle"
// against the plain catalog name.
var noiseTokens = map[string]struct{}{
	"console": {},
	"bundle":  {},
	"edition": {},
	"model":   {},
	"system":  {},
	"with":    {},
	"and":     {},
	"the":     {},
	"for":     {},
	"new":     {},
	"used":    {},
}

// capacityToken matches storage-size tokens such as "500gb" or "2tb".
var capacityToken = regexp.MustCompile(`^\d{1,4}(gb|tb)$`)

// Normalize canonicalizes a free-text title or platform name: lowercase,
// "&" expanded to "and", every run of non-alphanumeric characters collapsed
// to a single space, leading/trailing whitespace trimmed. Total and
// deterministic; empty input yields an empty string.
func Normalize(value string) string {
	text := strings.ToLower(strings.TrimSpace(value))
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "&", " and ")

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens returns the whitespace-separated tokens of the normalized input.
func Tokens(value string) []string {
	normalized := Normalize(value)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// TokenSet returns the normalized tokens of value as a set.
func TokenSet(value string) map[string]struct{} {
	tokens := Tokens(value)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// CleanTitle normalizes a product title and strips noise tokens: generic
// listing words, storage-capacity tokens (e.g. "500gb"), and any token that
// also appears in the platform name, so titles embedding the platform are
// not double-penalized during scoring.
func CleanTitle(title, platform string) string {
	tokens := Tokens(title)
	if len(tokens) == 0 {
		return ""
	}
	platformTokens := TokenSet(platform)

	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, noisy := noiseTokens[token]; noisy {
			continue
		}
		if capacityToken.MatchString(token) {
			continue
		}
		if _, onPlatform := platformTokens[token]; onPlatform {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}
