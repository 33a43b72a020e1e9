package cdc

import (
	"context"

	"go.uber.org/fx"
)

// Runnable is the lifecycle surface of an engine, independent of its document
// type.
type Runnable interface {
	Start() error
	Stop() error
}

// AttachEngineHooks ties an engine to the host lifecycle: the subscription is
// opened on process start and closed on shutdown. A configuration failure on
// start aborts application startup.
func AttachEngineHooks(engine Runnable, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return engine.Start()
		},
		OnStop: func(ctx context.Context) error {
			return engine.Stop()
		},
	})
}
