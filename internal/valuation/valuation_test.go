package valuation_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

var (
	t0 = types.Atomic("t0")
	t1 = types.Atomic("t1")
	lp = types.MustMint(t0, t1)

	alice = types.User("A")
	bob   = types.User("B")
)

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

func requireDec(t *testing.T, expected string, actual sdkmath.LegacyDec) {
	t.Helper()
	require.Truef(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func newOracle() *valuation.ReferenceOracle {
	return valuation.NewReferenceOracle(map[string]sdkmath.LegacyDec{
		"t0": dec("1000"),
		"t1": dec("1000"),
	})
}

func pooled(t *testing.T) *state.State {
	t.Helper()
	s := state.New()
	for _, u := range []types.User{alice, bob} {
		require.NoError(t, s.SetBalance(u, t0, dec("100")))
		require.NoError(t, s.SetBalance(u, t1, dec("100")))
	}
	s, err := transition.NewDeposit(alice, dec("100"), t0, dec("100"), t1).Apply(s)
	require.NoError(t, err)
	return s
}

func TestPrice_Atomic(t *testing.T) {
	o := newOracle()
	s := state.New()

	p, err := o.Price(s, t0)
	require.NoError(t, err)
	requireDec(t, "1000", p)

	p, err = o.Price(s, types.Atomic("unknown"))
	require.NoError(t, err)
	requireDec(t, "0", p)
}

func TestPrice_Minted(t *testing.T) {
	o := newOracle()
	s := pooled(t)

	p, err := o.Price(s, lp)
	require.NoError(t, err)
	requireDec(t, "1000", p)

	// (120*1000 + 83.333333333333333334*1000) / 200
	s, err = transition.NewSwap(bob, t0, t1, dec("20")).Apply(s)
	require.NoError(t, err)
	p, err = o.Price(s, lp)
	require.NoError(t, err)
	requireDec(t, "1016.66666666666666667", p)
}

func TestPrice_DegenerateSupply(t *testing.T) {
	o := newOracle()
	s := pooled(t)
	s, err := transition.NewRedeem(alice, t0, t1, dec("200")).Apply(s)
	require.NoError(t, err)

	_, err = o.Price(s, lp)
	require.ErrorIs(t, err, types.ErrDegenerateSupply)
}

func TestNetWealth(t *testing.T) {
	o := newOracle()
	s := pooled(t)
	before := s.Snapshot()

	total, err := valuation.NetWealth(s, o.Price)
	require.NoError(t, err)
	requireDec(t, "400000", total)

	a, err := valuation.NetWealthOf(s, alice, o.Price)
	require.NoError(t, err)
	requireDec(t, "200000", a)

	b, err := valuation.NetWealthOf(s, bob, o.Price)
	require.NoError(t, err)
	requireDec(t, "200000", b)

	none, err := valuation.NetWealthOf(s, "nobody", o.Price)
	require.NoError(t, err)
	requireDec(t, "0", none)

	require.Equal(t, before, s.Snapshot())
}

func TestNetWealth_SkipsEmptyLPAfterFullRedeem(t *testing.T) {
	o := newOracle()
	s := pooled(t)
	s, err := transition.NewRedeem(alice, t0, t1, dec("200")).Apply(s)
	require.NoError(t, err)

	total, err := valuation.NetWealth(s, o.Price)
	require.NoError(t, err)
	requireDec(t, "400000", total)
}

func TestNetWealth_PropagatesPriceErrors(t *testing.T) {
	s := pooled(t)
	failing := func(_ *state.State, tok types.Token) (sdkmath.LegacyDec, error) {
		if tok.IsMinted() {
			return sdkmath.LegacyDec{}, types.ErrDegenerateSupply
		}
		return sdkmath.LegacyOneDec(), nil
	}

	_, err := valuation.NetWealth(s, failing)
	require.ErrorIs(t, err, types.ErrDegenerateSupply)

	b, err := valuation.NetWealthOf(s, bob, failing)
	require.NoError(t, err)
	requireDec(t, "200", b)
}
