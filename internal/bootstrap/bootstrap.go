// Package bootstrap brings the scan store schema online before the HTTP
// listener starts. It tolerates a store that is still accepting its first
// connections and gives up after a fixed attempt budget.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/metrics"
)

const (
	DefaultAttempts = 5
	DefaultBackoff  = 2 * time.Second
)

// ErrFailed wraps the last error of a bootstrap that did not reach Ready.
var ErrFailed = errors.New("schema bootstrap failed")

// State of the bootstrap state machine.
type State int

const (
	StateAttempting State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the terminal outcome of Run.
type Result struct {
	State    State
	Attempts int
	Err      error
}

// Bootstrapper runs EnsureSchema until it succeeds, the store reports a
// non-connectivity error, or the attempt budget is spent.
type Bootstrapper struct {
	Schema   domain.SchemaInitializer
	Attempts int
	Backoff  time.Duration
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// wait blocks for the back-off; replaced in tests
	wait func(ctx context.Context, d time.Duration) error

	once   sync.Once
	result Result
}

// New returns a Bootstrapper with the default budget (5 attempts, 2s apart).
func New(schema domain.SchemaInitializer, logger *zap.Logger, m *metrics.Metrics) *Bootstrapper {
	return &Bootstrapper{
		Schema:   schema,
		Attempts: DefaultAttempts,
		Backoff:  DefaultBackoff,
		Logger:   logger,
		Metrics:  m,
	}
}

// Run executes the state machine once. Later calls return the first result.
func (b *Bootstrapper) Run(ctx context.Context) (Result, error) {
	b.once.Do(func() {
		b.result = b.run(ctx)
	})
	if b.result.State != StateReady {
		return b.result, fmt.Errorf("%w: %w", ErrFailed, b.result.Err)
	}
	return b.result, nil
}

func (b *Bootstrapper) run(ctx context.Context) Result {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	budget := b.Attempts
	if budget <= 0 {
		budget = DefaultAttempts
	}
	wait := b.wait
	if wait == nil {
		wait = sleepCtx
	}

	remaining := budget
	attempt := 0
	for {
		attempt++
		log.Info("attempting to migrate database",
			zap.Int("attempt", attempt), zap.Int("budget", budget))

		err := b.Schema.EnsureSchema(ctx)
		if err == nil {
			b.observe("ready")
			log.Info("database migration successful", zap.Int("attempt", attempt))
			return Result{State: StateReady, Attempts: attempt}
		}

		if !errors.Is(err, domain.ErrStoreUnavailable) {
			b.observe("fatal")
			log.Error("database migration failed with a non-transient error", zap.Error(err))
			return Result{State: StateFailed, Attempts: attempt, Err: err}
		}

		remaining--
		if remaining == 0 {
			b.observe("exhausted")
			log.Error("database still unreachable, giving up",
				zap.Int("attempts", attempt), zap.Error(err))
			return Result{State: StateFailed, Attempts: attempt, Err: err}
		}

		b.observe("retry")
		log.Warn("database not ready yet, retrying",
			zap.Duration("backoff", b.Backoff), zap.Int("remaining", remaining), zap.Error(err))
		if werr := wait(ctx, b.Backoff); werr != nil {
			return Result{State: StateFailed, Attempts: attempt, Err: werr}
		}
	}
}

func (b *Bootstrapper) observe(outcome string) {
	if b.Metrics != nil {
		b.Metrics.BootstrapAttempts.WithLabelValues(outcome).Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
