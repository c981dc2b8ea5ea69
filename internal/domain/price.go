package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Price limits: five significant digits, two of them after the decimal point.
const (
	PriceMaxDigits     = 5
	PriceDecimalPlaces = 2
)

// ErrInvalidPrice is returned for prices that are not non-negative decimals within limits.
var ErrInvalidPrice = errors.New("invalid price")

// Price is an amount in cents. It renders as a fixed two-decimal string ("5.25")
// so clients never see binary floating point artifacts.
type Price int64

// ParsePrice parses "5", "5.2" or "5.25" into cents.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPrice, s)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPrice, s)
	}
	if len(frac) > PriceDecimalPlaces {
		return 0, fmt.Errorf("%w: at most %d decimal places", ErrInvalidPrice, PriceDecimalPlaces)
	}

	whole = strings.TrimLeft(whole, "0")
	if len(whole) > PriceMaxDigits-PriceDecimalPlaces {
		return 0, fmt.Errorf("%w: at most %d digits before the decimal point", ErrInvalidPrice, PriceMaxDigits-PriceDecimalPlaces)
	}

	var units int64
	if whole != "" {
		units, _ = strconv.ParseInt(whole, 10, 64)
	}
	frac += strings.Repeat("0", PriceDecimalPlaces-len(frac))
	cents, _ := strconv.ParseInt(frac, 10, 64)

	return Price(units*100 + cents), nil
}

// String renders the price with exactly two decimals.
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
