package provider

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/metrics"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxRetries   = 5
	maxBackoff          = 30 * time.Second
)

// Relay is the remote approval service holding signing requests
type Relay interface {
	CreatePayload(ctx context.Context, txJSON any, submit bool) (*model.SigningRequest, error)
	GetPayload(ctx context.Context, id string) (*model.SigningRequestState, error)
}

// PollerConfig tunes the polling loop. Zero values take the defaults.
type PollerConfig struct {
	Interval   time.Duration
	MaxRetries int
	Clock      clock.Clock
	Metrics    *metrics.Metrics
}

// Poller waits for signing requests to reach a terminal status.
//
// The first poll happens immediately, then one poll per interval. A failed poll is
// retried with exponential backoff; a successful poll resets the failure count.
// Cancelling ctx stops polling but leaves the request on the relay.
type Poller struct {
	relay      Relay
	interval   time.Duration
	maxRetries int
	clock      clock.Clock
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewPoller creates a poller for relay
func NewPoller(relay Relay, cfg PollerConfig) *Poller {
	p := &Poller{
		relay:      relay,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
		log:        log.With().Str("component", "request_poller").Logger(),
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.maxRetries <= 0 {
		p.maxRetries = DefaultMaxRetries
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	return p
}

func (p *Poller) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	b.Clock = p.clock
	b.Reset()
	return b
}

// Await polls request id until it is SIGNED, REJECTED, CANCELLED or EXPIRED.
// signed=false alone never ends the loop: only the resolved, cancelled or expired flags do.
func (p *Poller) Await(ctx context.Context, id string) (*model.SigningRequestState, error) {
	logger := p.log.With().Str("uuid", id).Logger()
	b := p.newBackOff()
	failures := 0
	var wait time.Duration

	for {
		if wait > 0 {
			select {
			case <-ctx.Done():
				logger.Info().Msg("Stopped waiting for signing request")
				return nil, errors.Wrapf(ctx.Err(), "waiting for signing request %s", id)
			case <-p.clock.After(wait):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "waiting for signing request %s", id)
		}

		state, err := p.relay.GetPayload(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrapf(ctx.Err(), "waiting for signing request %s", id)
			}
			p.metrics.ObserveRelayPoll("error")
			if !retryable(err) {
				return nil, err
			}
			failures++
			if failures > p.maxRetries {
				return nil, errors.Wrapf(err, "signing request %s: giving up after %d failed polls", id, failures)
			}
			wait = b.NextBackOff()
			logger.Warn().Err(err).Int("failures", failures).Dur("retry_in", wait).Msg("Signing request poll failed")
			continue
		}

		failures = 0
		b.Reset()
		p.metrics.ObserveRelayPoll(string(state.Status))
		logger.Debug().Str("status", string(state.Status)).Msg("Signing request polled")

		if state.Status.Terminal() {
			logger.Info().Str("status", string(state.Status)).Msg("Signing request resolved")
			return state, nil
		}
		wait = p.interval
	}
}

// retryable separates transport trouble from answers that will not change on retry
func retryable(err error) bool {
	if errors.Is(err, model.ErrMalformedResponse) {
		return false
	}
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
