package cdc_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/docstream/cdc-worker/cdc"
)

var _ = Describe("HandlerRegistry", func() {
	var registry *cdc.HandlerRegistry[testDoc]

	BeforeEach(func() {
		registry = cdc.NewHandlerRegistry[testDoc](zap.NewNop().Sugar())
	})

	It("removes handlers by registration id", func() {
		first := registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			return nil
		}))

		Expect(registry.Len()).To(Equal(1))
		Expect(registry.Remove(first)).To(BeTrue())
		Expect(registry.Remove(first)).To(BeFalse())
		Expect(registry.Len()).To(BeZero())
	})

	It("notifies handlers in registration order", func() {
		var order []string
		registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			order = append(order, "first")
			return nil
		}))
		registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			order = append(order, "second")
			return nil
		}))

		registry.NotifyEvent(context.Background(), cdc.Event[testDoc]{OperationType: cdc.OperationTypeInsert})
		Expect(order).To(Equal([]string{"first", "second"}))
	})

	It("continues past a failing handler", func() {
		invoked := 0
		registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			return errors.New("boom")
		}))
		registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			invoked++
			return nil
		}))

		registry.NotifyEvent(context.Background(), cdc.Event[testDoc]{})
		Expect(invoked).To(Equal(1))
	})

	It("tolerates a handler unregistering itself mid-dispatch", func() {
		var id string
		invoked := 0
		id = registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			registry.Remove(id)
			return nil
		}))
		registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			invoked++
			return nil
		}))

		registry.NotifyEvent(context.Background(), cdc.Event[testDoc]{})
		Expect(invoked).To(Equal(1))
		Expect(registry.Len()).To(Equal(1))

		registry.NotifyEvent(context.Background(), cdc.Event[testDoc]{})
		Expect(invoked).To(Equal(2))
	})

	It("only notifies handlers that opt into error and close signals", func() {
		plain := 0
		registry.Add(cdc.HandlerFunc[testDoc](func(ctx context.Context, event cdc.Event[testDoc]) error {
			plain++
			return nil
		}))
		full := &recordingHandler{}
		registry.Add(full)

		registry.NotifyError(context.Background(), errors.New("outage"))
		registry.NotifyClose(context.Background())

		Expect(plain).To(BeZero())
		Expect(full.Errors()).To(HaveLen(1))
		Expect(full.Closes()).To(Equal(1))
	})
})
