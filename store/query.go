package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter builds query documents without hand-writing operator maps. The zero
// value matches everything.
type Filter struct {
	conditions bson.M
}

func NewFilter() *Filter {
	return &Filter{conditions: bson.M{}}
}

func ById(id primitive.ObjectID) *Filter {
	return NewFilter().Eq("_id", id)
}

func (f *Filter) Eq(field string, value interface{}) *Filter {
	f.conditions[field] = value
	return f
}

func (f *Filter) Ne(field string, value interface{}) *Filter {
	return f.operator(field, "$ne", value)
}

func (f *Filter) In(field string, values ...interface{}) *Filter {
	return f.operator(field, "$in", bson.A(values))
}

func (f *Filter) Gt(field string, value interface{}) *Filter {
	return f.operator(field, "$gt", value)
}

func (f *Filter) Gte(field string, value interface{}) *Filter {
	return f.operator(field, "$gte", value)
}

func (f *Filter) Lt(field string, value interface{}) *Filter {
	return f.operator(field, "$lt", value)
}

func (f *Filter) Lte(field string, value interface{}) *Filter {
	return f.operator(field, "$lte", value)
}

func (f *Filter) Exists(field string, exists bool) *Filter {
	return f.operator(field, "$exists", exists)
}

func (f *Filter) Regex(field, pattern, options string) *Filter {
	f.conditions[field] = primitive.Regex{Pattern: pattern, Options: options}
	return f
}

func (f *Filter) operator(field, op string, value interface{}) *Filter {
	existing, ok := f.conditions[field].(bson.M)
	if !ok {
		existing = bson.M{}
		f.conditions[field] = existing
	}
	existing[op] = value
	return f
}

func (f *Filter) Build() bson.M {
	if f == nil || f.conditions == nil {
		return bson.M{}
	}
	return f.conditions
}
