package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateSending
	// StateStreaming is reserved; the model collaborator answers in one piece.
	StateStreaming
	StateAwaitingResult
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateAwaitingResult:
		return "awaiting_result"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pending reports whether a request is in flight in this state.
func (s State) Pending() bool {
	return s == StateSending || s == StateStreaming || s == StateAwaitingResult
}

var ErrRequestPending = errors.New("client: a request is already pending")

const defaultStopTimeout = 5 * time.Second

// Outcome is how a request settled. Result is set for Completed; it is also
// set for Cancelled when the server reported the stop itself.
type Outcome struct {
	State  State
	Result *AskResult
	Err    error
}

// Controller drives one generation request at a time. Every request gets a
// generation number; a result whose number is no longer current belongs to
// a cancelled or superseded request and is dropped.
type Controller struct {
	mu         sync.Mutex
	transport  Transport
	logger     *zap.Logger
	state      State
	generation uint64
	cancel     context.CancelFunc
	outcome    chan Outcome

	StopTimeout time.Duration
}

func NewController(transport Transport, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		transport:   transport,
		logger:      logger,
		state:       StateIdle,
		StopTimeout: defaultStopTimeout,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit starts sub and returns a channel that receives exactly one Outcome.
// A request that is still pending makes Submit fail with ErrRequestPending.
func (c *Controller) Submit(ctx context.Context, sub Submission) (<-chan Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Pending() {
		return nil, ErrRequestPending
	}

	c.generation++
	gen := c.generation
	reqCtx, cancel := context.WithCancel(ctx)
	out := make(chan Outcome, 1)

	c.state = StateSending
	c.cancel = cancel
	c.outcome = out

	go c.run(reqCtx, gen, sub)
	return out, nil
}

func (c *Controller) run(ctx context.Context, gen uint64, sub Submission) {
	c.mu.Lock()
	if gen == c.generation && c.state == StateSending {
		c.state = StateAwaitingResult
	}
	c.mu.Unlock()

	result, err := c.transport.Ask(ctx, sub)
	c.settle(gen, result, err)
}

func (c *Controller) settle(gen uint64, result *AskResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || !c.state.Pending() {
		c.logger.Debug("discarding late result", zap.Uint64("generation", gen))
		return
	}

	var outcome Outcome
	switch {
	case err != nil:
		outcome = Outcome{State: StateFailed, Err: err}
	case result.Stopped:
		outcome = Outcome{State: StateCancelled, Result: result}
	default:
		outcome = Outcome{State: StateCompleted, Result: result}
	}

	c.finish(outcome)
}

// finish must be called with mu held.
func (c *Controller) finish(outcome Outcome) {
	c.state = outcome.State
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.outcome != nil {
		c.outcome <- outcome
		c.outcome = nil
	}
}

// Cancel stops the pending request in two phases. The local wait is released
// at once and the request settles as Cancelled; the server is then asked to
// stop in the background, and a failure there is only logged. Cancel reports
// whether anything was pending.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if !c.state.Pending() {
		c.mu.Unlock()
		return false
	}
	gen := c.generation
	// Any result still in flight now carries a stale generation.
	c.generation++
	c.finish(Outcome{State: StateCancelled, Err: context.Canceled})
	c.mu.Unlock()

	go c.stopRemote(gen)
	return true
}

func (c *Controller) stopRemote(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), c.StopTimeout)
	defer cancel()

	if err := c.transport.Stop(ctx); err != nil {
		c.logger.Warn("remote stop failed", zap.Uint64("generation", gen), zap.Error(err))
	}
}

// Reset returns a settled controller to Idle. It is a no-op while a request
// is pending.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Pending() {
		c.state = StateIdle
	}
}
