package records

import (
	"net/url"
	"strings"

	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
)

// ParseProductFragment extracts the record id from a shared-link
// fragment of the form `product=<id>`. The fragment may arrive with a
// leading `#` or as a full URL whose fragment carries the pair.
func ParseProductFragment(fragment string) (string, error) {
	raw := strings.TrimSpace(fragment)
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "fragment is required")
	}

	// Accept a full shared URL and reduce it to its fragment.
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Fragment != "" {
			raw = u.Fragment
		}
	}
	raw = strings.TrimPrefix(raw, "#")

	values, err := url.ParseQuery(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed fragment")
	}
	id := strings.TrimSpace(values.Get("product"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "fragment carries no product id")
	}
	return id, nil
}

// CanonicalAddress strips the fragment from a shared link so clients can
// rewrite their address bar after resolving it.
func CanonicalAddress(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i]
	}
	return raw
}
