package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docstream/cdc-worker/cdc"
)

// Pipeline accumulates aggregation stages in order.
type Pipeline struct {
	stages mongo.Pipeline
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) Match(filter bson.M) *Pipeline {
	return p.stage("$match", filter)
}

func (p *Pipeline) Project(projection bson.M) *Pipeline {
	return p.stage("$project", projection)
}

func (p *Pipeline) Sort(sort bson.D) *Pipeline {
	return p.stage("$sort", sort)
}

func (p *Pipeline) Skip(count int64) *Pipeline {
	return p.stage("$skip", count)
}

func (p *Pipeline) Limit(count int64) *Pipeline {
	return p.stage("$limit", count)
}

func (p *Pipeline) Unwind(path string) *Pipeline {
	return p.stage("$unwind", path)
}

func (p *Pipeline) Group(id interface{}, accumulators bson.M) *Pipeline {
	group := bson.M{"_id": id}
	for field, accumulator := range accumulators {
		group[field] = accumulator
	}
	return p.stage("$group", group)
}

func (p *Pipeline) stage(name string, value interface{}) *Pipeline {
	p.stages = append(p.stages, bson.D{{Key: name, Value: value}})
	return p
}

func (p *Pipeline) Build() mongo.Pipeline {
	return p.stages
}

// OperationTypeFilter builds a change stream pipeline that restricts
// notifications to the given operation types.
func OperationTypeFilter(types ...cdc.OperationType) mongo.Pipeline {
	ops := make(bson.A, 0, len(types))
	for _, t := range types {
		ops = append(ops, string(t))
	}
	return NewPipeline().
		Match(bson.M{"operationType": bson.M{"$in": ops}}).
		Build()
}

// NamespaceFilter builds a change stream pipeline that restricts
// notifications to the given collections of a database. With no collections
// it matches the whole database.
func NamespaceFilter(database string, collections ...string) mongo.Pipeline {
	match := bson.M{"ns.db": database}
	if len(collections) > 0 {
		colls := make(bson.A, 0, len(collections))
		for _, c := range collections {
			colls = append(colls, c)
		}
		match["ns.coll"] = bson.M{"$in": colls}
	}
	return NewPipeline().Match(match).Build()
}
