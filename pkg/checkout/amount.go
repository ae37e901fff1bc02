package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ToBaseUnits scales price by 10^decimals and rounds half-up to an integer
// amount of the token's smallest unit. The scaling is done in decimal so
// prices like 4.35 do not pick up binary floating point error.
func ToBaseUnits(price decimal.Decimal, decimals uint8) (uint64, error) {
	if !price.IsPositive() {
		return 0, fmt.Errorf("%w: price %s must be positive", ErrInvalidAmount, price)
	}

	// Round(0) rounds half away from zero, which is half-up for positive prices.
	units := price.Shift(int32(decimals)).Round(0).BigInt()

	if !units.IsUint64() {
		return 0, fmt.Errorf("%w: price %s overflows %d-decimal base units", ErrInvalidAmount, price, decimals)
	}
	if units.Sign() == 0 {
		return 0, fmt.Errorf("%w: price %s is below one base unit at %d decimals", ErrInvalidAmount, price, decimals)
	}
	return units.Uint64(), nil
}
