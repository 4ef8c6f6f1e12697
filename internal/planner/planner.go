package planner

import (
	"encoding/json"
	"fmt"
	"os"

	errorsmod "cosmossdk.io/errors"

	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
)

// LoadPlan reads a JSON action plan from path.
func LoadPlan(path string) (ActionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}
	return plan, nil
}

// ParsePlan decodes a JSON action plan and checks that every sub-action is
// well formed.
func ParsePlan(data []byte) (ActionPlan, error) {
	var plan ActionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return ActionPlan{}, errorsmod.Wrap(types.ErrInvalidPlan, err.Error())
	}
	if _, err := plan.Transitions(); err != nil {
		return ActionPlan{}, err
	}
	return plan, nil
}

// InitialState builds the genesis state of the plan.
func (p ActionPlan) InitialState() (*state.State, error) {
	s := state.New()
	for i, g := range p.Genesis {
		if g.User == "" {
			return nil, types.ErrInvalidPlan.Wrapf("genesis entry %d has no user", i)
		}
		if err := s.SetBalance(g.User, g.Token, g.Amount); err != nil {
			return nil, errorsmod.Wrapf(err, "genesis entry %d", i)
		}
	}
	for i, gp := range p.Pools {
		if err := s.SetReserve(gp.Token0, gp.Reserve0, gp.Token1, gp.Reserve1); err != nil {
			return nil, errorsmod.Wrapf(err, "genesis pool %d", i)
		}
	}
	return s, nil
}

// Transitions converts the sub-actions into ledger transitions. NO_OP steps
// are dropped. Amount checks are left to the transitions themselves.
func (p ActionPlan) Transitions() ([]transition.Transition, error) {
	planLogger := logger.GetForComponent("action_planner")

	out := make([]transition.Transition, 0, len(p.SubActions))
	for i, a := range p.SubActions {
		tx, err := a.Transition()
		if err != nil {
			planLogger.Error().Int("index", i).Str("type", string(a.Type)).Err(err).Msg("Malformed sub-action")
			return nil, errorsmod.Wrapf(err, "sub-action %d", i)
		}
		if tx == nil {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// Transition returns the ledger transition for a, or nil for NO_OP.
func (a SubAction) Transition() (transition.Transition, error) {
	if a.Type == SubActionNoOp {
		return nil, nil
	}
	if a.Sender == "" {
		return nil, types.ErrInvalidPlan.Wrapf("%s has no sender", a.Type)
	}

	switch a.Type {
	case SubActionSwap:
		if a.TokenIn.IsZero() || a.TokenOut.IsZero() {
			return nil, types.ErrInvalidPlan.Wrap("SWAP needs token_in and token_out")
		}
		return transition.NewSwap(a.Sender, a.TokenIn, a.TokenOut, a.AmountIn), nil
	case SubActionDepositLP:
		if a.Token0.IsZero() || a.Token1.IsZero() {
			return nil, types.ErrInvalidPlan.Wrap("DEPOSIT_LP needs token0 and token1")
		}
		return transition.NewDeposit(a.Sender, a.Amount0, a.Token0, a.Amount1, a.Token1), nil
	case SubActionWithdrawLP:
		if a.Token0.IsZero() || a.Token1.IsZero() {
			return nil, types.ErrInvalidPlan.Wrap("WITHDRAW_LP needs token0 and token1")
		}
		return transition.NewRedeem(a.Sender, a.Token0, a.Token1, a.Shares), nil
	default:
		return nil, types.ErrInvalidPlan.Wrapf("unknown sub-action type %q", a.Type)
	}
}

// ObservedUsers returns the users to report on: Observed when set,
// otherwise every genesis user in first-seen order.
func (p ActionPlan) ObservedUsers() []types.User {
	if len(p.Observed) > 0 {
		return append([]types.User(nil), p.Observed...)
	}
	seen := make(map[types.User]struct{})
	var users []types.User
	for _, g := range p.Genesis {
		if _, ok := seen[g.User]; ok {
			continue
		}
		seen[g.User] = struct{}{}
		users = append(users, g.User)
	}
	return users
}
