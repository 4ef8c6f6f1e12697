package analyzer

import (
	"errors"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// ErrInsufficientData indicates that not enough data points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// SpotPriceSeries returns the pool's spot price of base in units of quote,
// reserve(quote)/reserve(base), for every state of traj. States in which the
// pool is missing or empty contribute zero.
func SpotPriceSeries(traj *simulations.Trajectory, base, quote types.Token) ([]sdkmath.LegacyDec, error) {
	if traj == nil || len(traj.States) == 0 {
		return nil, ErrEmptyTrajectory
	}
	series := make([]sdkmath.LegacyDec, 0, len(traj.States))
	for _, s := range traj.States {
		rBase, rQuote := s.Reserve(base, quote), s.Reserve(quote, base)
		if !rBase.IsPositive() {
			series = append(series, sdkmath.LegacyZeroDec())
			continue
		}
		p, err := overflow(utils.SafeQuo(rQuote, rBase))
		if err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	return series, nil
}

// CalculateVolatility returns the population standard deviation of the
// logarithmic step-to-step returns of prices. Pairs with a non-positive
// price are skipped. The result is per step, not annualized.
func CalculateVolatility(prices []sdkmath.LegacyDec) (float64, error) {
	n := len(prices)
	if n < 2 {
		return 0, ErrInsufficientData
	}

	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if !utils.IsPositive(prices[i-1]) || !utils.IsPositive(prices[i]) {
			continue
		}
		current, err := utils.DecToFloat64(prices[i])
		if err != nil {
			return 0, err
		}
		previous, err := utils.DecToFloat64(prices[i-1])
		if err != nil {
			return 0, err
		}
		logReturns = append(logReturns, math.Log(current/previous))
	}

	numReturns := len(logReturns)
	if numReturns == 0 {
		return 0, ErrInsufficientData
	}

	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mean := sum / float64(numReturns)

	var sumSqDiff float64
	for _, r := range logReturns {
		sumSqDiff += math.Pow(r-mean, 2)
	}
	return math.Sqrt(sumSqDiff / float64(numReturns)), nil
}
