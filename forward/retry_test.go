package forward_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docstream/cdc-worker/cdc"
	"github.com/docstream/cdc-worker/forward"
)

var _ = Describe("RetryingHandler", func() {
	var originalAttempts uint
	var originalDelay time.Duration

	BeforeEach(func() {
		originalAttempts = forward.DefaultAttempts
		originalDelay = forward.DefaultDelay
		forward.DefaultAttempts = 3
		forward.DefaultDelay = time.Millisecond
	})

	AfterEach(func() {
		forward.DefaultAttempts = originalAttempts
		forward.DefaultDelay = originalDelay
	})

	It("retries failing deliveries until one succeeds", func() {
		invocations := 0
		delegate := cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			invocations++
			if invocations < 3 {
				return errors.New("sink unavailable")
			}
			return nil
		})

		handler := forward.NewRetryingHandler[testDoc](delegate)
		Expect(handler.OnEvent(context.Background(), cdc.Event[testDoc]{})).To(Succeed())
		Expect(invocations).To(Equal(3))
	})

	It("gives up after the attempt budget", func() {
		invocations := 0
		delegate := cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			invocations++
			return errors.New("sink unavailable")
		})

		handler := forward.NewRetryingHandler[testDoc](delegate)
		Expect(handler.OnEvent(context.Background(), cdc.Event[testDoc]{})).To(HaveOccurred())
		Expect(invocations).To(Equal(3))
	})

	It("forwards error and close signals to a capable delegate", func() {
		delegate := &signalRecorder{}
		handler := forward.NewRetryingHandler[testDoc](delegate)

		handler.OnError(context.Background(), errors.New("outage"))
		handler.OnClose(context.Background())

		Expect(delegate.errors).To(Equal(1))
		Expect(delegate.closes).To(Equal(1))
	})
})

type signalRecorder struct {
	errors int
	closes int
}

func (s *signalRecorder) OnEvent(ctx context.Context, event cdc.Event[testDoc]) error {
	return nil
}

func (s *signalRecorder) OnError(ctx context.Context, err error) {
	s.errors++
}

func (s *signalRecorder) OnClose(ctx context.Context) {
	s.closes++
}
