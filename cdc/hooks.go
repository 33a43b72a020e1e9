package cdc

import (
	"context"

	"go.uber.org/zap"
)

// OperationHooks is the engine's built-in per-operation behavior, supplied at
// construction. OnOther receives drop, rename, dropDatabase, invalidate and
// any operation type the engine does not recognize. A hook error is treated
// as a sign the feed may be unhealthy and is routed into the reconnect path,
// unlike handler errors which are always isolated.
type OperationHooks[Document any] interface {
	OnInsert(ctx context.Context, event Event[Document]) error
	OnUpdate(ctx context.Context, event Event[Document]) error
	OnReplace(ctx context.Context, event Event[Document]) error
	OnDelete(ctx context.Context, event Event[Document]) error
	OnOther(ctx context.Context, event Event[Document]) error
}

// LoggingHooks is the default OperationHooks implementation. It records each
// operation at debug level and never fails.
type LoggingHooks[Document any] struct {
	logger *zap.SugaredLogger
}

func NewLoggingHooks[Document any](logger *zap.SugaredLogger) *LoggingHooks[Document] {
	return &LoggingHooks[Document]{logger: logger}
}

func (h *LoggingHooks[Document]) OnInsert(ctx context.Context, event Event[Document]) error {
	h.log("insert", event)
	return nil
}

func (h *LoggingHooks[Document]) OnUpdate(ctx context.Context, event Event[Document]) error {
	h.log("update", event)
	return nil
}

func (h *LoggingHooks[Document]) OnReplace(ctx context.Context, event Event[Document]) error {
	h.log("replace", event)
	return nil
}

func (h *LoggingHooks[Document]) OnDelete(ctx context.Context, event Event[Document]) error {
	h.log("delete", event)
	return nil
}

func (h *LoggingHooks[Document]) OnOther(ctx context.Context, event Event[Document]) error {
	h.log("other", event)
	return nil
}

func (h *LoggingHooks[Document]) log(hook string, event Event[Document]) {
	h.logger.Debugw("change stream operation",
		"hook", hook,
		"operationType", event.OperationType,
		"database", event.Namespace.Database,
		"collection", event.Namespace.Collection)
}
