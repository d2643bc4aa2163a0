package reference

import (
	"strconv"
	"strings"

	"github.com/EClaesson/go-luhn"
	"github.com/amirasaad/brokerage/pkg/domain"
)

var ErrInvalidISIN = domain.NewFieldError("isin", "ISIN must be 12 characters with a valid check digit")

// NormalizeISIN upper-cases an ISIN and checks its shape and check digit.
// Letters are expanded to two digits (A=10 … Z=35) before the Luhn check.
func NormalizeISIN(isin string) (string, error) {
	isin = strings.ToUpper(strings.TrimSpace(isin))
	if len(isin) != 12 {
		return "", ErrInvalidISIN
	}
	var expanded strings.Builder
	for i, r := range isin {
		switch {
		case r >= 'A' && r <= 'Z':
			if i == 11 {
				return "", ErrInvalidISIN
			}
			expanded.WriteString(strconv.Itoa(int(r-'A') + 10))
		case r >= '0' && r <= '9':
			if i < 2 {
				return "", ErrInvalidISIN
			}
			expanded.WriteRune(r)
		default:
			return "", ErrInvalidISIN
		}
	}
	ok, err := luhn.IsValid(expanded.String())
	if err != nil || !ok {
		return "", ErrInvalidISIN
	}
	return isin, nil
}
