package store

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/docstream/cdc-worker/cdc"
)

type BackfillConfig struct {
	Parallelism        int64 `envconfig:"BACKFILL_PARALLELISM" default:"4"`
	DocumentsPerSecond uint  `envconfig:"BACKFILL_DOCUMENTS_PER_SECOND" default:"100"`
}

// Backfiller replays the current contents of a collection to a change event
// handler as synthetic insert events, so a freshly attached sink can be
// primed before live tailing takes over. Delivery order within a backfill is
// not defined; a handler that needs ordering should be attached to the engine
// only.
type Backfiller[Document any] struct {
	collection  *mongo.Collection
	limiter     ratelimit.Limiter
	parallelism int64
	logger      *zap.SugaredLogger
}

func NewBackfiller[Document any](collection *mongo.Collection, logger *zap.SugaredLogger) (*Backfiller[Document], error) {
	cfg := BackfillConfig{}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &Backfiller[Document]{
		collection:  collection,
		limiter:     ratelimit.New(int(cfg.DocumentsPerSecond)),
		parallelism: cfg.Parallelism,
		logger:      logger,
	}, nil
}

func (b *Backfiller[Document]) Backfill(ctx context.Context, filter *Filter, handler cdc.Handler[Document]) error {
	namespace := cdc.Namespace{
		Database:   b.collection.Database().Name(),
		Collection: b.collection.Name(),
	}
	b.logger.Infow("starting backfill",
		"database", namespace.Database,
		"collection", namespace.Collection)

	cursor, err := b.collection.Find(ctx, filter.Build())
	if err != nil {
		return fmt.Errorf("opening backfill cursor: %w", err)
	}
	defer cursor.Close(ctx)

	sem := semaphore.NewWeighted(b.parallelism)
	eg, c := errgroup.WithContext(ctx)

	count := 0
	for cursor.Next(ctx) {
		if c.Err() != nil {
			break
		}

		event, err := b.syntheticInsert(cursor.Current, namespace)
		if err != nil {
			return err
		}

		b.limiter.Take()
		if err := sem.Acquire(c, 1); err != nil {
			break
		}

		eg.Go(func() error {
			defer sem.Release(1)
			return handler.OnEvent(c, event)
		})
		count++
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("reading backfill cursor: %w", err)
	}

	b.logger.Infow("backfill complete", "documents", count)
	return nil
}

func (b *Backfiller[Document]) syntheticInsert(raw bson.Raw, namespace cdc.Namespace) (cdc.Event[Document], error) {
	doc := new(Document)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return cdc.Event[Document]{}, fmt.Errorf("decoding backfill document: %w", err)
	}

	var key bson.Raw
	if idValue, err := raw.LookupErr("_id"); err == nil {
		var id interface{}
		if err := idValue.Unmarshal(&id); err == nil {
			key, _ = bson.Marshal(bson.M{"_id": id})
		}
	}

	return cdc.Event[Document]{
		OperationType: cdc.OperationTypeInsert,
		DocumentKey:   key,
		FullDocument:  doc,
		Namespace:     namespace,
	}, nil
}
