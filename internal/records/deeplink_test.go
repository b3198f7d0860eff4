package records

import (
	"testing"

	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
)

func TestParseProductFragment(t *testing.T) {
	cases := []struct {
		name     string
		fragment string
		want     string
	}{
		{"bare pair", "product=abc123", "abc123"},
		{"leading hash", "#product=abc123", "abc123"},
		{"full url", "https://example.com/app#product=abc123", "abc123"},
		{"extra params", "view=detail&product=abc123", "abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseProductFragment(tc.fragment)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.fragment, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseProductFragmentRejectsJunk(t *testing.T) {
	for _, fragment := range []string{"", "  ", "video=abc", "#", "product="} {
		_, err := ParseProductFragment(fragment)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("fragment %q: expected validation error, got %v", fragment, err)
		}
	}
}

func TestCanonicalAddress(t *testing.T) {
	got := CanonicalAddress("https://example.com/app#product=abc")
	if got != "https://example.com/app" {
		t.Fatalf("expected fragment stripped, got %q", got)
	}
	got = CanonicalAddress("https://example.com/app")
	if got != "https://example.com/app" {
		t.Fatalf("expected address unchanged, got %q", got)
	}
}
