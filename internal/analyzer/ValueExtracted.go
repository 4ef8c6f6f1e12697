package analyzer

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

var ErrEmptyTrajectory = errors.New("trajectory has no states")

// WealthSeries values user's wallet in every state of traj.
func WealthSeries(traj *simulations.Trajectory, user types.User, price valuation.PriceFunc) ([]sdkmath.LegacyDec, error) {
	if traj == nil || len(traj.States) == 0 {
		return nil, ErrEmptyTrajectory
	}
	series := make([]sdkmath.LegacyDec, 0, len(traj.States))
	for i, s := range traj.States {
		w, err := valuation.NetWealthOf(s, user, price)
		if err != nil {
			return nil, fmt.Errorf("valuing %s at state %d: %w", user, i, err)
		}
		series = append(series, w)
	}
	return series, nil
}

// ValueExtracted is the change in user's net wealth from the first to the
// last state of traj. A positive value is wealth gained by the user.
func ValueExtracted(traj *simulations.Trajectory, user types.User, price valuation.PriceFunc) (sdkmath.LegacyDec, error) {
	if traj == nil || len(traj.States) == 0 {
		return sdkmath.LegacyDec{}, ErrEmptyTrajectory
	}
	first, err := valuation.NetWealthOf(traj.States[0], user, price)
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("valuing %s at the initial state: %w", user, err)
	}
	last, err := valuation.NetWealthOf(traj.Final(), user, price)
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("valuing %s at the final state: %w", user, err)
	}
	return last.Sub(first), nil
}
