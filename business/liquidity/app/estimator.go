package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/logger"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/ratelimit"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/retry"
)

const (
	// defaultMaxUnits is the upper search bound in whole source units.
	defaultMaxUnits = 1_000_000

	// defaultMaxIterations bounds the bisection to O(log range) probes
	// while still resolving to well under 0.01% of the range.
	defaultMaxIterations = 24
)

// DepthEstimator infers tradable liquidity depth for a route by
// bisecting the input-amount space on observed slippage. Quotes worsen
// monotonically as amount grows under normal pool mechanics, which is
// the precondition bisection needs.
//
// The estimator holds no state across searches; every call builds its
// own search state and baseline. The only shared resource is the
// admission limiter, which all concurrent searches draw from.
type DepthEstimator struct {
	source  QuoteSource
	limiter *ratelimit.Limiter
	policy  retry.Policy
	log     logger.LoggerInterface

	maxUnits      int64
	maxIterations int
}

// EstimatorOption customizes a DepthEstimator.
type EstimatorOption func(*DepthEstimator)

// WithMaxUnits sets the upper search bound in whole source units.
func WithMaxUnits(units int64) EstimatorOption {
	return func(e *DepthEstimator) {
		if units > 0 {
			e.maxUnits = units
		}
	}
}

// WithMaxIterations caps the number of bisection steps per search.
func WithMaxIterations(n int) EstimatorOption {
	return func(e *DepthEstimator) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// NewDepthEstimator creates an estimator probing source through the
// given limiter and retry policy.
func NewDepthEstimator(
	source QuoteSource,
	limiter *ratelimit.Limiter,
	policy retry.Policy,
	log logger.LoggerInterface,
	opts ...EstimatorOption,
) *DepthEstimator {
	e := &DepthEstimator{
		source:        source,
		limiter:       limiter,
		policy:        policy,
		log:           log,
		maxUnits:      defaultMaxUnits,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// probe runs one quote call through the retry wrapper; each attempt
// re-acquires the admission limiter so retries also respect the rate
// ceiling.
func (e *DepthEstimator) probe(ctx context.Context, route domain.Route, amount *big.Int) (domain.Quote, error) {
	return retry.Do(ctx, e.policy, func(ctx context.Context) (domain.Quote, error) {
		if err := e.limiter.Acquire(ctx); err != nil {
			return domain.Quote{}, err
		}
		return e.source.GetQuote(ctx, route, amount)
	})
}

// FindMaxAmountAtSlippage searches for the largest input amount whose
// slippage against a one-unit baseline stays at or below targetBps.
//
// Probes within the search are strictly sequential: each bisection step
// depends on the previous probe's outcome. A hard failure on the
// baseline probe aborts the search. During bisection, the domain
// no-quote condition is consumed as "amount too large"; any other hard
// failure aborts and propagates, since it says nothing about liquidity.
func (e *DepthEstimator) FindMaxAmountAtSlippage(ctx context.Context, route domain.Route, targetBps int64) (domain.Threshold, error) {
	if targetBps < 0 {
		return domain.Threshold{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("negative slippage target %d bps", targetBps)))
	}

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(route.Src.Decimals)), nil)

	baseline, err := e.probe(ctx, route, unit)
	if err != nil {
		return domain.Threshold{}, fmt.Errorf("baseline probe for %s: %w", route, err)
	}

	baseRate, err := domain.QuoteRate(route, baseline)
	if err != nil {
		return domain.Threshold{}, fmt.Errorf("baseline rate for %s: %w", route, err)
	}
	if baseRate.Sign() <= 0 {
		return domain.Threshold{}, apperror.New(apperror.CodeNoQuote,
			apperror.WithContext(fmt.Sprintf("zero baseline rate for %s", route)))
	}

	state := searchState{
		lo:       1,
		hi:       e.maxUnits,
		best:     new(big.Int).Set(unit),
		baseRate: baseRate,
	}

	for i := 0; i < e.maxIterations && state.lo <= state.hi; i++ {
		// Prompt abandonment between iterations.
		if err := ctx.Err(); err != nil {
			return domain.Threshold{}, err
		}

		mid := state.lo + (state.hi-state.lo)/2
		amount := new(big.Int).Mul(big.NewInt(mid), unit)

		quote, err := e.probe(ctx, route, amount)
		if err != nil {
			if apperror.IsNoQuote(err) {
				// Amount too large for available liquidity: search lower.
				state.hi = mid - 1
				continue
			}
			return domain.Threshold{}, fmt.Errorf("probe %s units on %s: %w", amount, route, err)
		}

		rate, err := domain.QuoteRate(route, quote)
		if err != nil {
			return domain.Threshold{}, fmt.Errorf("rate for %s: %w", route, err)
		}
		slippage, err := domain.SlippageBps(rate, state.baseRate)
		if err != nil {
			return domain.Threshold{}, err
		}

		state.samples = append(state.samples, domain.Sample{
			SrcAmount:   amount,
			DstAmount:   quote.DstAmount,
			SlippageBps: slippage,
		})

		if slippage <= targetBps {
			state.best = amount
			state.bestBps = slippage
			state.lo = mid + 1
		} else {
			state.hi = mid - 1
		}
	}

	e.log.Debug(ctx, "depth search finished",
		"route", route.String(),
		"target_bps", targetBps,
		"max_amount_in", state.best.String(),
		"achieved_bps", state.bestBps,
		"probes", len(state.samples),
	)

	return domain.Threshold{
		TargetBps:   targetBps,
		MaxAmountIn: state.best,
		AchievedBps: state.bestBps,
		Samples:     state.samples,
	}, nil
}

// searchState is the transient per-search bookkeeping, created when a
// search starts and discarded when it terminates.
type searchState struct {
	lo, hi   int64
	best     *big.Int
	bestBps  int64
	baseRate decimal.Decimal
	samples  []domain.Sample
}

// EstimateDepth runs one independent search per target threshold,
// concurrently, each with its own baseline and search state. Successful
// thresholds are returned in target order; failed ones are omitted and
// their errors joined, so callers can keep partial results (one
// threshold's failure does not abort another's search).
func (e *DepthEstimator) EstimateDepth(ctx context.Context, route domain.Route, targetsBps []int64) (domain.RouteDepth, error) {
	results := make([]*domain.Threshold, len(targetsBps))
	searchErrs := make([]error, len(targetsBps))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targetsBps {
		g.Go(func() error {
			threshold, err := e.FindMaxAmountAtSlippage(gctx, route, target)
			if err != nil {
				searchErrs[i] = fmt.Errorf("threshold %d bps: %w", target, err)
				return nil
			}
			results[i] = &threshold
			return nil
		})
	}
	_ = g.Wait() // goroutines report through searchErrs

	depth := domain.RouteDepth{
		Route:      route,
		MeasuredAt: time.Now().UTC(),
	}
	for _, r := range results {
		if r != nil {
			depth.Thresholds = append(depth.Thresholds, *r)
		}
	}

	return depth, errors.Join(searchErrs...)
}
