package domain

import "strings"

// maskedPlaceholder is returned for secrets too short to mask meaningfully.
const maskedPlaceholder = "***"

// MaskAPIKey returns a display-safe rendering of an API key.
//
// Secrets shorter than 8 characters are fully masked. Otherwise the result is
// "prefix...last4" where the prefix is everything up to and including the
// first hyphen when one appears within the first 12 characters (e.g.
// "sk-...cdef" for OpenAI-style keys), or the first 3 characters when it
// does not.
//
// This is a presentation helper only; it carries no security weight.
func MaskAPIKey(secret string) string {
	if len(secret) < 8 {
		return maskedPlaceholder
	}

	head := secret
	if len(head) > 12 {
		head = head[:12]
	}

	prefix := secret[:3]
	if i := strings.Index(head, "-"); i >= 0 {
		prefix = secret[:i+1]
	}

	return prefix + "..." + secret[len(secret)-4:]
}
