package transport

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submission"
)

const (
	// DefaultSimulatedDelay mimics network latency.
	DefaultSimulatedDelay = 2 * time.Second
	// DefaultSuccessRate is the share of simulated sends that succeed.
	DefaultSuccessRate = 0.9
)

// ErrSimulatedFailure is returned when the simulated network fails.
var ErrSimulatedFailure = errors.New("transport: simulated network error")

// Decider picks the outcome of a simulated send; a nil error is a success.
type Decider func(p payload.Payload) error

// Simulated waits a fixed delay and then succeeds or fails according to its
// decider.
type Simulated struct {
	delay  time.Duration
	decide Decider
}

// Ensure the implementation satisfies the submission contract.
var _ submission.Transport = (*Simulated)(nil)

// SimulatedOption configures a Simulated transport.
type SimulatedOption func(*Simulated)

// WithDelay overrides the simulated latency.
func WithDelay(d time.Duration) SimulatedOption {
	return func(s *Simulated) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithDecider replaces the random outcome with fn.
func WithDecider(fn Decider) SimulatedOption {
	return func(s *Simulated) {
		if fn != nil {
			s.decide = fn
		}
	}
}

// AlwaysSucceed is a Decider that accepts every payload.
func AlwaysSucceed(payload.Payload) error { return nil }

// RandomDecider fails with ErrSimulatedFailure at 1-rate probability using
// draw for randomness. A nil draw uses math/rand/v2.
func RandomDecider(rate float64, draw func() float64) Decider {
	if draw == nil {
		draw = rand.Float64
	}
	return func(payload.Payload) error {
		if draw() < rate {
			return nil
		}
		return ErrSimulatedFailure
	}
}

// NewSimulated returns a transport that waits DefaultSimulatedDelay and
// succeeds DefaultSuccessRate of the time unless configured otherwise.
func NewSimulated(options ...SimulatedOption) *Simulated {
	s := &Simulated{
		delay:  DefaultSimulatedDelay,
		decide: RandomDecider(DefaultSuccessRate, nil),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Send waits for the delay or ctx, whichever ends first, then applies the
// decider.
func (s *Simulated) Send(ctx context.Context, p payload.Payload) (submission.Receipt, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return submission.Receipt{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return submission.Receipt{}, err
	}
	if err := s.decide(p); err != nil {
		return submission.Receipt{}, err
	}
	return submission.Receipt{StatusCode: 200, Message: "Form submitted successfully!"}, nil
}
