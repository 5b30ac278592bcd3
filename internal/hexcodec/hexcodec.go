// Package hexcodec undoes the damage some SMS providers inflict on non-ASCII
// payloads: multi-byte characters arrive as concatenated 4-hex-digit code
// points. The predicate is deliberately conservative so tracking codes and
// order numbers never get mangled.
package hexcodec

import (
	"strconv"
	"strings"
)

// blockMarkers are the Unicode block prefixes we accept inside a hex run.
// Devanagari is U+09xx, Gujarati U+0Axx; extend the table for new scripts.
var blockMarkers = []string{"09", "0a", "0A"}

// Repair rewrites every hex-run token in body back into its characters.
// ASCII-only bodies come back unchanged, and Repair is idempotent: decoded
// runs no longer look like hex runs.
func Repair(body string) string {
	tokens := strings.Split(body, " ")
	changed := false
	for i, tok := range tokens {
		if !isHexRun(tok) {
			continue
		}
		tokens[i] = decodeRun(tok)
		changed = true
	}
	if !changed {
		return body
	}
	return strings.Join(tokens, " ")
}

// A token is a hex run iff every character is a hex digit, its length is a
// positive multiple of 4, and it contains one of the known block markers.
func isHexRun(tok string) bool {
	if len(tok) < 4 || len(tok)%4 != 0 {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if !isHexDigit(tok[i]) {
			return false
		}
	}
	for _, marker := range blockMarkers {
		if strings.Contains(tok, marker) {
			return true
		}
	}
	return false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func decodeRun(tok string) string {
	var sb strings.Builder
	for i := 0; i+4 <= len(tok); i += 4 {
		cp, err := strconv.ParseUint(tok[i:i+4], 16, 32)
		if err != nil {
			return tok
		}
		sb.WriteRune(rune(cp))
	}
	return sb.String()
}

// DecodeEcho handles the second provider's outbound echo format: an "@U"
// prefix followed by 4-hex-digit groups for the whole body. Bodies without
// the prefix, including plain ASCII, pass through untouched.
func DecodeEcho(body string) string {
	if !strings.HasPrefix(body, "@U") {
		return body
	}
	payload := body[2:]
	if len(payload) == 0 || len(payload)%4 != 0 {
		return body
	}
	var sb strings.Builder
	for i := 0; i+4 <= len(payload); i += 4 {
		cp, err := strconv.ParseUint(payload[i:i+4], 16, 32)
		if err != nil {
			return body
		}
		sb.WriteRune(rune(cp))
	}
	return sb.String()
}
