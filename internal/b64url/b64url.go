// Package b64url centralizes the base64url-without-padding alphabet crev
// uses for every encoded byte string on the wire: ids, sealed keys, nonces,
// salts and signatures (spec.md §6: "Base64 alphabet throughout is
// URL-safe without padding").
package b64url

import "encoding/base64"

var encoding = base64.RawURLEncoding

// Encode renders b as a base64url string with no padding.
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// Decode parses a base64url string with no padding, ignoring none of the
// input's whitespace — callers that need to tolerate line-wrapped input
// (proof signatures) must strip whitespace themselves first.
func Decode(s string) ([]byte, error) {
	return encoding.DecodeString(s)
}
