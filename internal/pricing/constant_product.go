// Package pricing implements the constant-product exchange formula with a
// basis-point input fee. Everything here is a pure function of reserves,
// input amount, and fee rate.
package pricing

import (
	"math/big"

	"ammpool/internal/model"
)

var bpsDenominator = big.NewInt(model.BasisPoints)

// Quote is the full breakdown of one swap computation.
type Quote struct {
	AmountIn         *big.Int
	Fee              *big.Int
	AmountInAfterFee *big.Int
	AmountOut        *big.Int
}

// FeeAmount returns amountIn * feeBps / 10000, truncated toward zero.
func FeeAmount(amountIn *big.Int, feeBps uint16) (*big.Int, error) {
	fee := new(big.Int).Mul(amountIn, big.NewInt(int64(feeBps)))
	if !model.InRange(fee) {
		return nil, ErrOverflow
	}
	return fee.Quo(fee, bpsDenominator), nil
}

// AmountInAfterFee returns amountIn minus its fee. A fee above 10000 bps
// yields a negative result; that is left to the caller.
func AmountInAfterFee(amountIn *big.Int, feeBps uint16) (*big.Int, error) {
	fee, err := FeeAmount(amountIn, feeBps)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(amountIn, fee), nil
}

// AmountOut computes reserveOut * x / (reserveIn + x) where x is amountIn
// after fee. reserveIn must be nonzero.
func AmountOut(reserveIn, reserveOut, amountIn *big.Int, feeBps uint16) (*big.Int, error) {
	q, err := Compute(reserveIn, reserveOut, amountIn, feeBps)
	if err != nil {
		return nil, err
	}
	return q.AmountOut, nil
}

// Compute returns the full swap breakdown for the given reserves.
func Compute(reserveIn, reserveOut, amountIn *big.Int, feeBps uint16) (Quote, error) {
	if reserveIn.Sign() == 0 {
		return Quote{}, ErrZeroReserve
	}

	fee, err := FeeAmount(amountIn, feeBps)
	if err != nil {
		return Quote{}, err
	}
	afterFee := new(big.Int).Sub(amountIn, fee)
	if !model.InRange(afterFee) {
		return Quote{}, ErrOverflow
	}

	numerator := new(big.Int).Mul(reserveOut, afterFee)
	if !model.InRange(numerator) {
		return Quote{}, ErrOverflow
	}
	denominator := new(big.Int).Add(reserveIn, afterFee)
	if !model.InRange(denominator) {
		return Quote{}, ErrOverflow
	}
	if denominator.Sign() == 0 {
		return Quote{}, ErrZeroDenominator
	}

	return Quote{
		AmountIn:         new(big.Int).Set(amountIn),
		Fee:              fee,
		AmountInAfterFee: afterFee,
		AmountOut:        numerator.Quo(numerator, denominator),
	}, nil
}
