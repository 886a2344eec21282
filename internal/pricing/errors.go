package pricing

import "errors"

var (
	ErrZeroReserve     = errors.New("input reserve is zero")
	ErrZeroDenominator = errors.New("swap denominator is zero")
	ErrOverflow        = errors.New("arithmetic overflow")
)
