package simulations

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// ErrNilState is returned when a trajectory is started without an initial state.
var ErrNilState = errors.New("initial state is nil")

// Trajectory is the sequence of states produced by folding transitions over
// an initial state. States[0] is the initial state and States[i+1] is the
// result of Steps[i].
type Trajectory struct {
	ID     uuid.UUID
	States []*state.State
	Steps  []transition.Transition
}

// Final returns the last state reached.
func (t *Trajectory) Final() *state.State {
	if t == nil || len(t.States) == 0 {
		return nil
	}
	return t.States[len(t.States)-1]
}

// StepError reports the transition that stopped a trajectory.
type StepError struct {
	Index int
	Step  transition.Transition
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type runConfig struct {
	audit     bool
	tolerance sdkmath.LegacyDec
}

// Option configures Run.
type Option func(*runConfig)

// WithInvariantAudit checks after every step that the state is structurally
// valid, that every atomic token supply is conserved, and that swaps keep
// the pool's constant product within relTol.
func WithInvariantAudit(relTol sdkmath.LegacyDec) Option {
	return func(c *runConfig) {
		c.audit = true
		c.tolerance = relTol
	}
}

// Run applies steps to initial in order. On failure it returns the partial
// trajectory up to the last good state together with a *StepError.
func Run(initial *state.State, steps []transition.Transition, opts ...Option) (*Trajectory, error) {
	return run(context.Background(), initial, steps, opts...)
}

func run(ctx context.Context, initial *state.State, steps []transition.Transition, opts ...Option) (*Trajectory, error) {
	if initial == nil {
		return nil, ErrNilState
	}
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	traj := &Trajectory{
		ID:     uuid.New(),
		States: make([]*state.State, 0, len(steps)+1),
		Steps:  make([]transition.Transition, 0, len(steps)),
	}
	traj.States = append(traj.States, initial)
	runLogger := logger.GetForComponent("trajectory").With().Str("trajectory", traj.ID.String()).Logger()

	current := initial
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return traj, err
		}
		next, err := step.Apply(current)
		if err != nil {
			runLogger.Warn().Int("step", i).Str("transition", step.String()).Err(err).Msg("Trajectory stopped")
			return traj, &StepError{Index: i, Step: step, Err: err}
		}
		if cfg.audit {
			if err := audit(current, next, step, cfg.tolerance); err != nil {
				runLogger.Error().Int("step", i).Str("transition", step.String()).Err(err).Msg("Invariant audit failed")
				return traj, &StepError{Index: i, Step: step, Err: err}
			}
		}
		traj.States = append(traj.States, next)
		traj.Steps = append(traj.Steps, step)
		logStep(runLogger, i, step, next)
		current = next
	}
	return traj, nil
}

func logStep(l zerolog.Logger, i int, step transition.Transition, s *state.State) {
	l.Debug().Int("step", i).Str("transition", step.String()).Str("state", s.String()).Msg("Step applied")
}

func audit(pre, post *state.State, step transition.Transition, relTol sdkmath.LegacyDec) error {
	if err := post.Validate(); err != nil {
		return err
	}
	if err := state.CheckConservation(pre, post, relTol); err != nil {
		return err
	}
	swap, ok := step.(transition.Swap)
	if !ok {
		return nil
	}
	k := pre.Reserve(swap.TokenIn, swap.TokenOut).Mul(pre.Reserve(swap.TokenOut, swap.TokenIn))
	product := post.Reserve(swap.TokenIn, swap.TokenOut).Mul(post.Reserve(swap.TokenOut, swap.TokenIn))
	if product.LT(k) || !utils.ApproxEqual(k, product, relTol) {
		return types.ErrInvariantViolation.Wrapf("constant product moved from %s to %s", k, product)
	}
	return nil
}

// Result is the outcome of one ordering explored by Explore. Err is the
// error that stopped the trajectory, if any.
type Result struct {
	Trajectory *Trajectory
	Err        error
}

// Explore runs each ordering as an independent trajectory from its own
// clone of initial, at most workers at a time. Results are returned in the
// order of orderings. A failing ordering does not cancel the others; only
// context cancellation does.
func Explore(ctx context.Context, initial *state.State, orderings [][]transition.Transition, workers int, opts ...Option) ([]Result, error) {
	if initial == nil {
		return nil, ErrNilState
	}
	if workers <= 0 {
		workers = 1
	}
	exploreLogger := logger.GetForComponent("explorer")
	exploreLogger.Info().Int("orderings", len(orderings)).Int("workers", workers).Msg("Exploring orderings")

	results := make([]Result, len(orderings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, steps := range orderings {
		start := initial.Clone()
		g.Go(func() error {
			traj, err := run(gctx, start, steps, opts...)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			results[i] = Result{Trajectory: traj, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		exploreLogger.Warn().Err(err).Msg("Exploration cancelled")
		return nil, err
	}
	return results, nil
}

// Permutations returns every ordering of steps. It is intended for the small
// step sets of sandwich and reordering experiments; n steps yield n! orderings.
func Permutations(steps []transition.Transition) [][]transition.Transition {
	if len(steps) == 0 {
		return [][]transition.Transition{{}}
	}
	var out [][]transition.Transition
	for i := range steps {
		rest := make([]transition.Transition, 0, len(steps)-1)
		rest = append(rest, steps[:i]...)
		rest = append(rest, steps[i+1:]...)
		for _, tail := range Permutations(rest) {
			perm := make([]transition.Transition, 0, len(steps))
			perm = append(perm, steps[i])
			perm = append(perm, tail...)
			out = append(out, perm)
		}
	}
	return out
}
