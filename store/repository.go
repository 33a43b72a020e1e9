package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("document not found")

// Pagination bounds a Find call. A zero Limit returns all matching documents.
type Pagination struct {
	Offset int64
	Limit  int64
	Sort   bson.D
}

// Repository is a thin CRUD wrapper around a collection. It shapes data and
// holds no state beyond the collection handle.
type Repository[Document any] struct {
	collection *mongo.Collection
}

func NewRepository[Document any](collection *mongo.Collection) *Repository[Document] {
	return &Repository[Document]{collection: collection}
}

func (r *Repository[Document]) Insert(ctx context.Context, doc Document) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("inserting document: %w", err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, nil
	}
	return id, nil
}

func (r *Repository[Document]) FindById(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	doc := new(Document)
	err := r.collection.FindOne(ctx, ById(id).Build()).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding document: %w", err)
	}
	return doc, nil
}

func (r *Repository[Document]) Find(ctx context.Context, filter *Filter, page Pagination) ([]Document, error) {
	opts := options.Find()
	if page.Offset > 0 {
		opts.SetSkip(page.Offset)
	}
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	if page.Sort != nil {
		opts.SetSort(page.Sort)
	}

	cursor, err := r.collection.Find(ctx, filter.Build(), opts)
	if err != nil {
		return nil, fmt.Errorf("finding documents: %w", err)
	}
	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	return docs, nil
}

func (r *Repository[Document]) UpdateById(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	result, err := r.collection.UpdateOne(ctx, ById(id).Build(), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[Document]) ReplaceById(ctx context.Context, id primitive.ObjectID, doc Document) error {
	result, err := r.collection.ReplaceOne(ctx, ById(id).Build(), doc)
	if err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[Document]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, ById(id).Build())
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[Document]) Count(ctx context.Context, filter *Filter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter.Build())
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Aggregate runs a pipeline and decodes every result.
func (r *Repository[Document]) Aggregate(ctx context.Context, pipeline *Pipeline, results interface{}) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline.Build())
	if err != nil {
		return fmt.Errorf("running aggregation: %w", err)
	}
	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("decoding aggregation results: %w", err)
	}
	return nil
}
