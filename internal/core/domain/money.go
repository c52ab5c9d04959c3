package domain

import "github.com/shopspring/decimal"

// Storage keeps money at NUMERIC(20,2) and rates at NUMERIC(9,4).
const (
	MoneyScale int32 = 2
	RateScale  int32 = 4
)

// FitsScale reports whether d carries no digits beyond places decimals.
// Trailing zeros are allowed, so 10.500 fits two places.
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// IsMoney reports whether d is representable in whole cents.
func IsMoney(d decimal.Decimal) bool { return FitsScale(d, MoneyScale) }

// IsRate reports whether d fits the stored rate precision.
func IsRate(d decimal.Decimal) bool { return FitsScale(d, RateScale) }
