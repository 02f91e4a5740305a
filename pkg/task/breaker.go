package task

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures NewBreaker.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

// Breaker guards a Store with a circuit breaker. Not-found and field errors
// are answers, not outages, so they never count against the breaker.
type Breaker struct {
	Store
	cb *gobreaker.CircuitBreaker
}

// NewBreaker wraps base. State changes are logged through logger.
func NewBreaker(base Store, settings BreakerSettings, logger *log.Logger) *Breaker {
	if settings.Name == "" {
		settings.Name = "task-store"
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
			}
		},
	})
	return &Breaker{Store: base, cb: cb}
}

// callerGone marks a failure caused by the caller's context ending, which
// says nothing about the store's health.
type callerGone struct {
	err error
}

func (e *callerGone) Error() string { return e.err.Error() }
func (e *callerGone) Unwrap() error { return e.err }

func isBreakerSuccess(err error) bool {
	var fe *FieldError
	var gone *callerGone
	return err == nil || errors.Is(err, ErrNotFound) || errors.As(err, &fe) || errors.As(err, &gone)
}

// execute runs fn through the breaker.
func (b *Breaker) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		v, err := fn()
		if err != nil && ctx.Err() != nil {
			return v, &callerGone{err: err}
		}
		return v, err
	})
	var gone *callerGone
	if errors.As(err, &gone) {
		err = gone.err
	}
	return v, err
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) List(ctx context.Context) ([]Task, error) {
	v, err := b.execute(ctx, func() (interface{}, error) {
		return b.Store.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Task), nil
}

func (b *Breaker) Get(ctx context.Context, id string) (*Task, error) {
	return b.one(ctx, func() (*Task, error) { return b.Store.Get(ctx, id) })
}

func (b *Breaker) Create(ctx context.Context, data map[string]any) (*Task, error) {
	return b.one(ctx, func() (*Task, error) { return b.Store.Create(ctx, data) })
}

func (b *Breaker) Update(ctx context.Context, id string, data map[string]any) (*Task, error) {
	return b.one(ctx, func() (*Task, error) { return b.Store.Update(ctx, id, data) })
}

func (b *Breaker) Delete(ctx context.Context, id string) (*Task, error) {
	return b.one(ctx, func() (*Task, error) { return b.Store.Delete(ctx, id) })
}

func (b *Breaker) one(ctx context.Context, fn func() (*Task, error)) (*Task, error) {
	v, err := b.execute(ctx, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Task), nil
}
