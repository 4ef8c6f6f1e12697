/*

This file ranks the users of a trajectory by the value they extracted.

*/

package analyzer

import (
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

// Extraction is one user's wealth change over a trajectory.
type Extraction struct {
	User    types.User
	Initial sdkmath.LegacyDec
	Final   sdkmath.LegacyDec
	Delta   sdkmath.LegacyDec
}

// RankExtractors values every user appearing in the trajectory's first or
// last state and sorts them by Delta, largest gain first. Ties keep user
// name order.
func RankExtractors(traj *simulations.Trajectory, price valuation.PriceFunc) ([]Extraction, error) {
	if traj == nil || len(traj.States) == 0 {
		return nil, ErrEmptyTrajectory
	}
	first, last := traj.States[0], traj.Final()

	seen := make(map[types.User]struct{})
	var users []types.User
	for _, s := range []*state.State{first, last} {
		for _, u := range s.Users() {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	out := make([]Extraction, 0, len(users))
	for _, u := range users {
		before, err := valuation.NetWealthOf(first, u, price)
		if err != nil {
			return nil, err
		}
		after, err := valuation.NetWealthOf(last, u, price)
		if err != nil {
			return nil, err
		}
		out = append(out, Extraction{User: u, Initial: before, Final: after, Delta: after.Sub(before)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Delta.GT(out[j].Delta) })

	rankLogger := logger.GetForComponent("extraction_ranker")
	for i, e := range out {
		rankLogger.Debug().
			Int("rank", i+1).
			Str("user", string(e.User)).
			Str("delta", e.Delta.String()).
			Msg("Ranked user by extracted value")
	}
	return out, nil
}
