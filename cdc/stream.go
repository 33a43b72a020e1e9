package cdc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeStream is the subset of the driver's change stream the engine
// consumes. *mongo.ChangeStream satisfies it as-is.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	ResumeToken() bson.Raw
	Err() error
	Close(ctx context.Context) error
}

// StreamWatcher opens change stream subscriptions against the store.
type StreamWatcher interface {
	Watch(ctx context.Context, pipeline mongo.Pipeline, opts *options.ChangeStreamOptions) (ChangeStream, error)
}

// CollectionWatcher adapts a single collection into a StreamWatcher.
type CollectionWatcher struct {
	collection *mongo.Collection
}

func NewCollectionWatcher(collection *mongo.Collection) *CollectionWatcher {
	return &CollectionWatcher{collection: collection}
}

func (w *CollectionWatcher) Watch(ctx context.Context, pipeline mongo.Pipeline, opts *options.ChangeStreamOptions) (ChangeStream, error) {
	return w.collection.Watch(ctx, pipeline, opts)
}

// DatabaseWatcher adapts a whole database into a StreamWatcher, receiving
// changes from every collection in it.
type DatabaseWatcher struct {
	database *mongo.Database
}

func NewDatabaseWatcher(database *mongo.Database) *DatabaseWatcher {
	return &DatabaseWatcher{database: database}
}

func (w *DatabaseWatcher) Watch(ctx context.Context, pipeline mongo.Pipeline, opts *options.ChangeStreamOptions) (ChangeStream, error) {
	return w.database.Watch(ctx, pipeline, opts)
}
