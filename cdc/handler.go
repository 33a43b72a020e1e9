package cdc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler receives normalized change events. Implementations may additionally
// satisfy ErrorHandler and CloseHandler to be notified of stream disruptions.
// Handlers are owned by their registrant, never by the engine.
type Handler[Document any] interface {
	OnEvent(ctx context.Context, event Event[Document]) error
}

// ErrorHandler is notified when the subscription reports an error.
type ErrorHandler interface {
	OnError(ctx context.Context, err error)
}

// CloseHandler is notified when the subscription closes, including the final
// close when the engine gives up reconnecting.
type CloseHandler interface {
	OnClose(ctx context.Context)
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc[Document any] func(ctx context.Context, event Event[Document]) error

func (f HandlerFunc[Document]) OnEvent(ctx context.Context, event Event[Document]) error {
	return f(ctx, event)
}

type registration[Document any] struct {
	id      string
	handler Handler[Document]
}

// HandlerRegistry tracks registered handlers in registration order. Dispatch
// iterates over a snapshot, so handlers may register or unregister at any
// time, including from within their own callbacks, without disturbing an
// in-flight notification.
type HandlerRegistry[Document any] struct {
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	handlers []registration[Document]
}

func NewHandlerRegistry[Document any](logger *zap.SugaredLogger) *HandlerRegistry[Document] {
	return &HandlerRegistry[Document]{logger: logger}
}

// Add registers a handler and returns an id for later removal.
func (r *HandlerRegistry[Document]) Add(handler Handler[Document]) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.handlers = append(r.handlers, registration[Document]{id: id, handler: handler})
	r.mu.Unlock()
	return id
}

// Remove unregisters the handler with the given id. It reports whether a
// handler was removed. The handler is guaranteed not to be invoked for any
// notification dispatched after Remove returns.
func (r *HandlerRegistry[Document]) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.handlers {
		if reg.id == id {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return true
		}
	}
	return false
}

func (r *HandlerRegistry[Document]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *HandlerRegistry[Document]) snapshot() []registration[Document] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]registration[Document], len(r.handlers))
	copy(snapshot, r.handlers)
	return snapshot
}

// NotifyEvent delivers the event to every registered handler in registration
// order, waiting for each before invoking the next. Handler failures are
// logged and never interrupt delivery to the remaining handlers.
func (r *HandlerRegistry[Document]) NotifyEvent(ctx context.Context, event Event[Document]) {
	for _, reg := range r.snapshot() {
		if err := reg.handler.OnEvent(ctx, event); err != nil {
			r.logger.Errorw("change event handler failed",
				"handler", reg.id,
				"operationType", event.OperationType,
				zap.Error(err))
		}
	}
}

// NotifyError delivers a subscription error to handlers implementing
// ErrorHandler, in registration order.
func (r *HandlerRegistry[Document]) NotifyError(ctx context.Context, err error) {
	for _, reg := range r.snapshot() {
		if eh, ok := reg.handler.(ErrorHandler); ok {
			eh.OnError(ctx, err)
		}
	}
}

// NotifyClose delivers a subscription close to handlers implementing
// CloseHandler, in registration order.
func (r *HandlerRegistry[Document]) NotifyClose(ctx context.Context) {
	for _, reg := range r.snapshot() {
		if ch, ok := reg.handler.(CloseHandler); ok {
			ch.OnClose(ctx)
		}
	}
}
