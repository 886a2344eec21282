package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"ammpool/internal/model"
)

func TestComputeReferenceScenario(t *testing.T) {
	req := require.New(t)

	q, err := Compute(big.NewInt(1000), big.NewInt(1000), big.NewInt(100), 30)
	req.NoError(err)
	req.Equal("0", q.Fee.String())
	req.Equal("100", q.AmountInAfterFee.String())
	req.Equal("90", q.AmountOut.String())
}

func TestComputeFeeDeducted(t *testing.T) {
	req := require.New(t)

	q, err := Compute(big.NewInt(1_000_000), big.NewInt(2_000_000), big.NewInt(10_000), 30)
	req.NoError(err)
	req.Equal("30", q.Fee.String())
	req.Equal("9970", q.AmountInAfterFee.String())
	// 2_000_000 * 9970 / 1_009_970 = 19743.16...
	req.Equal("19743", q.AmountOut.String())
}

func TestAmountOutZeroReserve(t *testing.T) {
	_, err := AmountOut(big.NewInt(0), big.NewInt(1000), big.NewInt(100), 30)
	require.ErrorIs(t, err, ErrZeroReserve)
}

func TestAmountOutMonotonicAndBounded(t *testing.T) {
	req := require.New(t)

	reserveIn := big.NewInt(5_000)
	reserveOut := big.NewInt(7_919)
	prev := big.NewInt(0)
	for _, in := range []int64{1, 2, 3, 10, 99, 100, 1_000, 50_000, 1_000_000_000} {
		out, err := AmountOut(reserveIn, reserveOut, big.NewInt(in), 30)
		req.NoError(err)
		req.True(out.Cmp(prev) >= 0, "amountOut decreased at amountIn=%d", in)
		req.True(out.Cmp(reserveOut) < 0, "amountOut reached reserveOut at amountIn=%d", in)
		prev = out
	}
}

func TestAmountOutFeeEffect(t *testing.T) {
	req := require.New(t)

	reserveIn := big.NewInt(1_000_000)
	reserveOut := big.NewInt(1_000_000)
	amountIn := big.NewInt(50_000)
	prev, err := AmountOut(reserveIn, reserveOut, amountIn, 0)
	req.NoError(err)
	for _, fee := range []uint16{1, 5, 30, 100, 1_000, 5_000, 9_999, 10_000} {
		out, err := AmountOut(reserveIn, reserveOut, amountIn, fee)
		req.NoError(err)
		req.True(out.Cmp(prev) <= 0, "amountOut increased at fee=%d", fee)
		prev = out
	}
	req.Equal("0", prev.String())
}

func TestAmountInAfterFeeAboveFullFee(t *testing.T) {
	req := require.New(t)

	// 200% fee: nothing guards the negative result.
	after, err := AmountInAfterFee(big.NewInt(100), 20_000)
	req.NoError(err)
	req.Equal("-100", after.String())

	out, err := AmountOut(big.NewInt(1_000), big.NewInt(1_000), big.NewInt(100), 20_000)
	req.NoError(err)
	// 1000 * -100 / 900 truncated toward zero.
	req.Equal("-111", out.String())
}

func TestComputeZeroDenominator(t *testing.T) {
	// reserveIn + afterFee == 100 + (100 - 200) == 0
	_, err := Compute(big.NewInt(100), big.NewInt(1_000), big.NewInt(100), 20_000)
	require.ErrorIs(t, err, ErrZeroDenominator)
}

func TestComputeOverflow(t *testing.T) {
	_, err := Compute(big.NewInt(1), model.MaxAmount, model.MaxAmount, 0)
	require.ErrorIs(t, err, ErrOverflow)
}
