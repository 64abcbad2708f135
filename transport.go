package scrawl

import (
	"encoding/base64"
	"strings"
)

// EncodeToString converts a binary buffer to its URL-safe text form:
// standard base64 with '+' and '/' swapped for '-' and '_' and the
// trailing padding stripped, so the result can sit in a query string
// without percent-encoding bloat.
func EncodeToString(buf []byte) string {
	return base64.RawURLEncoding.EncodeToString(buf)
}

// DecodeString reverses EncodeToString. Padded input is tolerated.
func DecodeString(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
