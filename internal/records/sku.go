package records

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultSKUPrefix seeds new accounts and replaces prefixes that
// sanitize down to nothing.
const DefaultSKUPrefix = "P"

// SanitizeSKUPrefix uppercases the prefix and strips everything that is
// not a letter or digit. An empty result falls back to the default.
func SanitizeSKUPrefix(prefix string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(prefix)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultSKUPrefix
	}
	return b.String()
}

// GenerateSKU produces the next free `PREFIX-0000` identifier. Starting
// at counter, each candidate already taken per exists bumps the counter
// by one; the returned nextCounter is one past the accepted candidate so
// the stored counter always points at a fresh slot.
func GenerateSKU(prefix string, counter int, exists func(sku string) bool) (sku string, nextCounter int) {
	prefix = SanitizeSKUPrefix(prefix)
	if counter < 1 {
		counter = 1
	}
	for {
		candidate := fmt.Sprintf("%s-%04d", prefix, counter)
		if exists == nil || !exists(candidate) {
			return candidate, counter + 1
		}
		counter++
	}
}

// SKUExistsIn builds an exists func over an in-memory record list.
func SKUExistsIn(records []RecordDTO) func(string) bool {
	taken := make(map[string]struct{}, len(records))
	for _, record := range records {
		if record.SKU != "" {
			taken[record.SKU] = struct{}{}
		}
	}
	return func(sku string) bool {
		_, ok := taken[sku]
		return ok
	}
}
