package garden

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace and applies NFC normalization so
// the same knowledge point typed on different keyboards is stored identically.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
