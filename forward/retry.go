package forward

import (
	"context"
	"time"

	"github.com/avast/retry-go"

	"github.com/docstream/cdc-worker/cdc"
)

var (
	DefaultAttempts  = uint(5)
	DefaultDelay     = 1 * time.Second
	DefaultDelayType = retry.FixedDelay
)

// RetryingHandler retries a delegate's event handling before giving up. Since
// the engine isolates handler failures, wrapping a forwarder in a
// RetryingHandler is what stands between a transient sink outage and a
// dropped event.
type RetryingHandler[Document any] struct {
	attempts  uint
	delay     time.Duration
	delayType retry.DelayTypeFunc
	delegate  cdc.Handler[Document]
}

func NewRetryingHandler[Document any](delegate cdc.Handler[Document]) *RetryingHandler[Document] {
	return &RetryingHandler[Document]{
		attempts:  DefaultAttempts,
		delay:     DefaultDelay,
		delayType: DefaultDelayType,
		delegate:  delegate,
	}
}

func (r *RetryingHandler[Document]) OnEvent(ctx context.Context, event cdc.Event[Document]) error {
	retryFn := func() error { return r.delegate.OnEvent(ctx, event) }
	return retry.Do(
		retryFn,
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(r.delayType),
	)
}

func (r *RetryingHandler[Document]) OnError(ctx context.Context, err error) {
	if handler, ok := r.delegate.(cdc.ErrorHandler); ok {
		handler.OnError(ctx, err)
	}
}

func (r *RetryingHandler[Document]) OnClose(ctx context.Context) {
	if handler, ok := r.delegate.(cdc.CloseHandler); ok {
		handler.OnClose(ctx)
	}
}
