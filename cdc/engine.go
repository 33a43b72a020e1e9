package cdc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type State string

const (
	StateStopped      State = "stopped"
	StateWatching     State = "watching"
	StateReconnecting State = "reconnecting"
)

// Engine owns a single change stream subscription and keeps it alive across
// transient failures. Notifications are consumed by one goroutine and
// dispatched strictly in arrival order; a notification is fully processed,
// hook and all handlers, before the next one is read. The resume token of the
// last processed notification is retained in memory and carried into every
// reconnect, so a reconnect never skips changes the store can still replay.
//
// The token is not persisted across process restarts. Callers who need
// durable resumption should read ResumeToken from a handler and seed
// Config.ResumeAfter on the next start.
type Engine[Document any] struct {
	watcher    StreamWatcher
	config     Config
	registry   *HandlerRegistry[Document]
	dispatcher *dispatcher[Document]
	logger     *zap.SugaredLogger

	mu          sync.Mutex
	state       State
	stream      ChangeStream
	cancel      context.CancelFunc
	done        chan struct{}
	attempts    int
	resumeToken bson.Raw
}

type Params[Document any] struct {
	Watcher StreamWatcher
	Config  Config

	// Hooks defaults to log-only behavior when nil.
	Hooks  OperationHooks[Document]
	Logger *zap.SugaredLogger
}

func NewEngine[Document any](p Params[Document]) (*Engine[Document], error) {
	if p.Watcher == nil {
		return nil, errors.New("stream watcher is required")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	hooks := p.Hooks
	if hooks == nil {
		hooks = NewLoggingHooks[Document](logger)
	}

	registry := NewHandlerRegistry[Document](logger)
	return &Engine[Document]{
		watcher:  p.Watcher,
		config:   p.Config,
		registry: registry,
		dispatcher: &dispatcher[Document]{
			hooks:    hooks,
			registry: registry,
			logger:   logger,
		},
		logger:      logger,
		state:       StateStopped,
		resumeToken: p.Config.ResumeAfter,
	}, nil
}

// AddHandler registers a handler and returns an id for RemoveHandler.
func (e *Engine[Document]) AddHandler(handler Handler[Document]) string {
	return e.registry.Add(handler)
}

func (e *Engine[Document]) RemoveHandler(id string) bool {
	return e.registry.Remove(id)
}

// Start opens the subscription and begins dispatching notifications. Starting
// an engine that is not stopped logs a warning and leaves the existing
// subscription untouched. A failure to open the subscription is returned to
// the caller and the engine stays stopped.
func (e *Engine[Document]) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateStopped {
		e.logger.Warnw("change stream engine is already watching", "state", e.state)
		return nil
	}

	stream, err := e.watcher.Watch(context.Background(), e.config.pipeline(), e.config.streamOptions(e.resumeToken))
	if err != nil {
		return fmt.Errorf("opening change stream: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.stream = stream
	e.cancel = cancel
	e.done = done
	e.state = StateWatching
	e.attempts = 0
	go e.run(ctx, stream, done)

	e.logger.Infow("watching change stream")
	return nil
}

// Stop closes the subscription and waits for the in-flight dispatch, if any,
// to finish. Stopping cancels a pending reconnect attempt. Stopping an engine
// that is not running logs a warning and does nothing.
func (e *Engine[Document]) Stop() error {
	e.mu.Lock()
	if e.state == StateStopped {
		e.logger.Warnw("change stream engine is not watching")
		e.mu.Unlock()
		return nil
	}
	e.state = StateStopped
	cancel := e.cancel
	done := e.done
	stream := e.stream
	e.cancel = nil
	e.stream = nil
	e.mu.Unlock()

	cancel()
	<-done
	if stream != nil {
		if err := stream.Close(context.Background()); err != nil {
			e.logger.Debugw("error closing change stream", zap.Error(err))
		}
	}
	e.logger.Infow("stopped watching change stream")
	return nil
}

// IsWatching reports whether the engine has a healthy subscription. It is
// false while a reconnect is pending and after the engine settles into the
// stopped state, including when the retry budget is exhausted.
func (e *Engine[Document]) IsWatching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateWatching
}

func (e *Engine[Document]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ResumeToken returns the token of the last processed notification, or nil
// when none has been processed yet. The token is opaque; it is valid input
// for Config.ResumeAfter on a future engine instance.
func (e *Engine[Document]) ResumeToken() bson.Raw {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resumeToken
}

// run is the single processing loop. It owns the stream it was handed until
// the stream is disrupted, at which point the reconnect loop either hands it
// a replacement or settles the engine into the stopped state.
func (e *Engine[Document]) run(ctx context.Context, stream ChangeStream, done chan struct{}) {
	defer close(done)

	for {
		disruption := e.consume(ctx, stream)
		if ctx.Err() != nil {
			// Explicit stop, which owns closing the stream.
			return
		}

		e.mu.Lock()
		if e.state == StateStopped {
			e.mu.Unlock()
			return
		}
		e.state = StateReconnecting
		e.stream = nil
		e.mu.Unlock()

		if disruption != nil {
			e.logger.Warnw("change stream disrupted", zap.Error(disruption))
			e.registry.NotifyError(ctx, disruption)
		} else {
			e.logger.Warnw("change stream closed unexpectedly")
			e.registry.NotifyClose(ctx)
		}
		if err := stream.Close(context.Background()); err != nil {
			e.logger.Debugw("error closing disrupted change stream", zap.Error(err))
		}

		stream = e.reconnect(ctx)
		if stream == nil {
			return
		}
	}
}

// consume reads notifications until the stream is disrupted. It returns the
// stream error, a dispatch error, or nil when the stream closed without
// reporting one.
func (e *Engine[Document]) consume(ctx context.Context, stream ChangeStream) error {
	for stream.Next(ctx) {
		var raw bson.Raw
		if err := stream.Decode(&raw); err != nil {
			return fmt.Errorf("reading change notification: %w", err)
		}

		// The token must be recorded before any hook or handler observes the
		// event, so a failing handler never blocks progress past it.
		e.setResumeToken(stream.ResumeToken())

		if err := e.dispatcher.dispatch(ctx, raw); err != nil {
			return err
		}
	}
	return stream.Err()
}

// reconnect retries opening a replacement stream from the last known resume
// token until one opens, the retry budget is exhausted, or the engine is
// stopped. It returns nil when no replacement stream was established.
func (e *Engine[Document]) reconnect(ctx context.Context) ChangeStream {
	for {
		if ctx.Err() != nil {
			return nil
		}

		e.mu.Lock()
		budget := e.config.MaxReconnectAttempts
		if !e.config.AutoReconnect || (budget > 0 && e.attempts >= budget) {
			attempts := e.attempts
			e.mu.Unlock()
			e.settle(ctx, attempts)
			return nil
		}
		e.attempts++
		attempt := e.attempts
		token := e.resumeToken
		e.mu.Unlock()

		e.logger.Infow("reconnecting to change stream",
			"attempt", attempt,
			"delay", e.config.ReconnectDelay)

		timer := time.NewTimer(e.config.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		stream, err := e.watcher.Watch(ctx, e.config.pipeline(), e.config.streamOptions(token))
		if err != nil {
			e.logger.Warnw("reconnect attempt failed", "attempt", attempt, zap.Error(err))
			continue
		}

		e.mu.Lock()
		if e.state == StateStopped {
			e.mu.Unlock()
			_ = stream.Close(context.Background())
			return nil
		}
		e.stream = stream
		e.state = StateWatching
		e.attempts = 0
		e.mu.Unlock()

		e.logger.Infow("reconnected to change stream", "attempt", attempt)
		return stream
	}
}

// settle transitions to the stopped state after reconnection is abandoned.
// This outcome is logged, never returned; callers learn about it by polling
// IsWatching or observing the final close notification.
func (e *Engine[Document]) settle(ctx context.Context, attempts int) {
	e.mu.Lock()
	if e.state == StateStopped {
		e.mu.Unlock()
		return
	}
	e.state = StateStopped
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	e.logger.Errorw("giving up on change stream reconnection", "attempts", attempts)
	e.registry.NotifyClose(ctx)
	if cancel != nil {
		cancel()
	}
}

func (e *Engine[Document]) setResumeToken(token bson.Raw) {
	if len(token) == 0 {
		return
	}
	cp := make(bson.Raw, len(token))
	copy(cp, token)
	e.mu.Lock()
	e.resumeToken = cp
	e.mu.Unlock()
}
