package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"aqar_scraper/models"
)

const (
	titlePrefixLen    = 50
	locationPrefixLen = 20
)

var multiSpaceRegex = regexp.MustCompile(`\s+`)

// DedupKey builds the identity key used to match an incoming record against
// the persisted dataset. Links are too often missing or rewritten across
// sources to serve as identity, so the key is composed from normalized
// title and location prefixes. Price stays out of this key: the merge
// policy compares prices of matched records to tell duplicates from
// genuine price updates, which a price-bearing key would make impossible.
// Truncation tolerates trailing text drift in long titles while staying
// specific enough in practice.
func DedupKey(r *models.Record) string {
	input := fmt.Sprintf("%s|%s",
		prefix(normalize(r.Title), titlePrefixLen),
		prefix(normalize(r.Location), locationPrefixLen),
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// StrictKey is the stricter key used by the final keep-first dedup pass
// after concatenation. It includes property type and bedrooms so that two
// genuinely different units sharing a title and price are not collapsed.
func StrictKey(r *models.Record) string {
	input := fmt.Sprintf("%s|%s|%d|%s|%d",
		normalize(r.Title),
		normalize(r.Location),
		r.Price,
		normalize(r.PropertyType),
		r.Bedrooms,
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return multiSpaceRegex.ReplaceAllString(s, " ")
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
