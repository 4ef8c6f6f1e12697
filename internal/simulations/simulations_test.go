package simulations_test

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
)

var (
	t0 = types.Atomic("t0")
	t1 = types.Atomic("t1")
	lp = types.MustMint(t0, t1)

	alice = types.User("A")
	bob   = types.User("B")

	tolerance = sdkmath.LegacyNewDecWithPrec(1, 12)
)

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

func funded(t *testing.T) *state.State {
	t.Helper()
	s := state.New()
	for _, u := range []types.User{alice, bob} {
		require.NoError(t, s.SetBalance(u, t0, dec("100")))
		require.NoError(t, s.SetBalance(u, t1, dec("100")))
	}
	return s
}

func scenario() []transition.Transition {
	return []transition.Transition{
		transition.NewDeposit(alice, dec("100"), t0, dec("100"), t1),
		transition.NewSwap(bob, t0, t1, dec("20")),
		transition.NewRedeem(alice, t0, t1, dec("50")),
	}
}

func TestRun_FoldsSequentially(t *testing.T) {
	initial := funded(t)
	traj, err := simulations.Run(initial, scenario(), simulations.WithInvariantAudit(tolerance))
	require.NoError(t, err)

	require.NotEqual(t, uuid.Nil, traj.ID)
	require.Len(t, traj.States, 4)
	require.Len(t, traj.Steps, 3)
	assert.Same(t, initial, traj.States[0])

	final := traj.Final()
	assert.True(t, dec("90").Equal(final.Reserve(t0, t1)))
	assert.True(t, dec("62.500000000000000001").Equal(final.Reserve(t1, t0)))
	assert.True(t, dec("150").Equal(final.Balance(alice, lp)))

	// Intermediate states are distinct values.
	assert.True(t, traj.States[1].Reserve(t0, t1).Equal(dec("100")))
	assert.True(t, traj.States[2].Reserve(t0, t1).Equal(dec("120")))
}

func TestRun_StopsAtFailingStep(t *testing.T) {
	steps := []transition.Transition{
		transition.NewDeposit(alice, dec("100"), t0, dec("100"), t1),
		transition.NewSwap(bob, t0, t1, dec("500")),
		transition.NewRedeem(alice, t0, t1, dec("50")),
	}
	traj, err := simulations.Run(funded(t), steps)
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrInsufficientBalance)

	var stepErr *simulations.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 1, stepErr.Index)
	assert.Contains(t, err.Error(), "step 1")

	require.Len(t, traj.States, 2)
	require.Len(t, traj.Steps, 1)
}

func TestRun_NilInitialState(t *testing.T) {
	_, err := simulations.Run(nil, scenario())
	require.ErrorIs(t, err, simulations.ErrNilState)
}

func TestRun_EmptySteps(t *testing.T) {
	initial := funded(t)
	traj, err := simulations.Run(initial, nil)
	require.NoError(t, err)
	require.Len(t, traj.States, 1)
	assert.Same(t, initial, traj.Final())
}

// fakeStep mints tokens out of thin air, which the audit must catch.
type fakeStep struct{}

func (fakeStep) Apply(pre *state.State) (*state.State, error) {
	post := pre.Clone()
	if err := post.SetBalance(alice, t0, pre.Balance(alice, t0).Add(sdkmath.LegacyOneDec())); err != nil {
		return nil, err
	}
	return post, nil
}
func (fakeStep) Kind() transition.Kind { return "FAKE" }
func (fakeStep) String() string        { return "fake" }

func TestRun_AuditCatchesConservationBreak(t *testing.T) {
	steps := []transition.Transition{fakeStep{}}

	_, err := simulations.Run(funded(t), steps)
	require.NoError(t, err)

	traj, err := simulations.Run(funded(t), steps, simulations.WithInvariantAudit(tolerance))
	require.ErrorIs(t, err, types.ErrInvariantViolation)
	require.Len(t, traj.States, 1)
}

func TestPermutations(t *testing.T) {
	steps := scenario()
	perms := simulations.Permutations(steps)
	require.Len(t, perms, 6)

	seen := make(map[string]bool)
	for _, p := range perms {
		require.Len(t, p, 3)
		key := p[0].String() + "|" + p[1].String() + "|" + p[2].String()
		assert.False(t, seen[key], "duplicate ordering %s", key)
		seen[key] = true
	}

	require.Len(t, simulations.Permutations(nil), 1)
}

func TestExplore_IndependentLineages(t *testing.T) {
	initial := funded(t)
	before := initial.Snapshot()
	orderings := simulations.Permutations(scenario())

	results, err := simulations.Explore(context.Background(), initial, orderings, 3, simulations.WithInvariantAudit(tolerance))
	require.NoError(t, err)
	require.Len(t, results, len(orderings))
	require.Equal(t, before, initial.Snapshot())

	ids := make(map[uuid.UUID]bool)
	succeeded := 0
	for i, r := range results {
		require.NotNil(t, r.Trajectory)
		assert.False(t, ids[r.Trajectory.ID])
		ids[r.Trajectory.ID] = true
		assert.NotSame(t, initial, r.Trajectory.States[0])

		// Only orderings that deposit first can swap and redeem.
		if orderings[i][0].Kind() == transition.KindDeposit && orderings[i][1].Kind() == transition.KindSwap {
			require.NoError(t, r.Err)
			succeeded++
			continue
		}
		if r.Err == nil {
			succeeded++
			continue
		}
		assert.Error(t, r.Err)
	}
	assert.GreaterOrEqual(t, succeeded, 1)

	// Explore matches a sequential Run of the same ordering.
	seq, err := simulations.Run(funded(t), orderings[0])
	if err == nil {
		require.NoError(t, results[0].Err)
		assert.Equal(t, seq.Final().Snapshot(), results[0].Trajectory.Final().Snapshot())
	}
}

func TestExplore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simulations.Explore(ctx, funded(t), simulations.Permutations(scenario()), 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExplore_NilState(t *testing.T) {
	_, err := simulations.Explore(context.Background(), nil, nil, 1)
	require.ErrorIs(t, err, simulations.ErrNilState)
}
