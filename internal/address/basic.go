package address

import (
	"context"
	"regexp"
	"strings"
)

var postalDigits = regexp.MustCompile(`^\d+(-\d+)?$`)

// BasicVerifier performs format-level checks without external API calls.
// It normalizes whitespace and casing and proposes the cleaned-up address as
// a suggestion when it differs from the input.
type BasicVerifier struct {
	// PostalLength is the digit count a postal code is padded or trimmed to
	// when proposing a correction (5 for US ZIP, 6 for Indian PIN).
	PostalLength int
}

// NewBasicVerifier creates a verifier for the given postal code length.
func NewBasicVerifier(postalLength int) *BasicVerifier {
	return &BasicVerifier{PostalLength: postalLength}
}

// Verify normalizes the address. A postal code of the wrong length yields an
// invalid result with a corrected suggestion, mirroring what a real
// verification API returns for a near-miss.
func (v *BasicVerifier) Verify(_ context.Context, addr Address) (*Result, error) {
	normalized := Address{
		Line1:      collapseSpaces(addr.Line1),
		Line2:      collapseSpaces(addr.Line2),
		City:       collapseSpaces(addr.City),
		State:      strings.TrimSpace(addr.State),
		PostalCode: strings.TrimSpace(addr.PostalCode),
		Country:    collapseSpaces(addr.Country),
	}

	digits := strings.ReplaceAll(normalized.PostalCode, " ", "")
	if v.PostalLength > 0 && postalDigits.MatchString(digits) {
		plain := strings.ReplaceAll(digits, "-", "")
		if len(plain) != v.PostalLength {
			suggested := normalized
			if len(plain) < v.PostalLength {
				suggested.PostalCode = plain + strings.Repeat("0", v.PostalLength-len(plain))
			} else {
				suggested.PostalCode = plain[:v.PostalLength]
			}
			return &Result{Valid: false, Suggested: &suggested}, nil
		}
		normalized.PostalCode = digits
	}

	if normalized != addr {
		return &Result{Valid: true, Suggested: &normalized}, nil
	}
	return &Result{Valid: true}, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
