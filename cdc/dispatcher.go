package cdc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// dispatcher turns raw notifications into events and routes them, first to
// the matching operation hook, then to every registered handler. It runs on
// the engine's single processing goroutine, so notifications are dispatched
// strictly in the order they were received.
type dispatcher[Document any] struct {
	hooks    OperationHooks[Document]
	registry *HandlerRegistry[Document]
	logger   *zap.SugaredLogger
}

// dispatch processes one notification end to end. The returned error is
// non-nil only for normalization or hook failures, which the engine treats
// the same as a subscription error. Handler failures never surface here.
func (d *dispatcher[Document]) dispatch(ctx context.Context, raw bson.Raw) error {
	event, err := decodeEvent[Document](raw)
	if err != nil {
		d.logger.Errorw("unable to decode change notification", zap.Error(err))
		return fmt.Errorf("decoding change notification: %w", err)
	}

	hookErr := d.invokeHook(ctx, event)
	if hookErr != nil {
		d.logger.Errorw("operation hook failed",
			"operationType", event.OperationType,
			zap.Error(hookErr))
	}

	// Handlers are notified even when the hook failed.
	d.registry.NotifyEvent(ctx, event)

	return hookErr
}

func (d *dispatcher[Document]) invokeHook(ctx context.Context, event Event[Document]) error {
	switch event.OperationType {
	case OperationTypeInsert:
		return d.hooks.OnInsert(ctx, event)
	case OperationTypeUpdate:
		return d.hooks.OnUpdate(ctx, event)
	case OperationTypeReplace:
		return d.hooks.OnReplace(ctx, event)
	case OperationTypeDelete:
		return d.hooks.OnDelete(ctx, event)
	case OperationTypeDrop, OperationTypeRename, OperationTypeDropDatabase, OperationTypeInvalidate:
		return d.hooks.OnOther(ctx, event)
	default:
		d.logger.Warnw("unrecognized operation type", "operationType", event.OperationType)
		return d.hooks.OnOther(ctx, event)
	}
}
