// Package intake implements the pre-persistence abuse gate.
//
// The gate is stateless and runs synchronously before anything is written:
// a refused submission leaves no trace beyond a metric. The response to a
// refused submission is uniform so an attacker cannot tune against the
// individual heuristics.
package intake

import (
	"time"

	"github.com/mssola/useragent"

	dErrors "signalbox/pkg/domain-errors"
)

// DefaultMinElapsed is the minimum believable form-fill duration. A human
// cannot meaningfully complete a multi-field sensitive form faster than this;
// legitimate slow typers are unaffected.
const DefaultMinElapsed = 5 * time.Second

// Signals are the abuse indicators submitted alongside the report payload.
type Signals struct {
	// Honeypot is the value of a hidden field humans never see. Bots that
	// fill every field reveal themselves here.
	Honeypot string
	// Elapsed is the wall-clock time between form render and submission.
	Elapsed time.Duration
	// UserAgent is the submitting client's User-Agent header; known crawler
	// and bot signatures are refused outright.
	UserAgent string
}

// Gate decides whether a submission may proceed to persistence.
type Gate struct {
	minElapsed time.Duration
}

// Option configures a Gate.
type Option func(*Gate)

// WithMinElapsed overrides the minimum form-fill duration.
func WithMinElapsed(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.minElapsed = d
		}
	}
}

// NewGate creates a Gate with default thresholds.
func NewGate(opts ...Option) *Gate {
	g := &Gate{minElapsed: DefaultMinElapsed}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check returns nil when the submission may proceed, or a uniform Rejected
// error. The error never reveals which heuristic fired.
func (g *Gate) Check(signals Signals) error {
	if signals.Honeypot != "" {
		return rejected()
	}
	if signals.Elapsed < g.minElapsed {
		return rejected()
	}
	if signals.UserAgent != "" && useragent.New(signals.UserAgent).Bot() {
		return rejected()
	}
	return nil
}

func rejected() error {
	return dErrors.New(dErrors.CodeRejected, "submission rejected")
}
