package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docstream/cdc-worker/store"
)

var _ = Describe("Filter", func() {
	It("matches everything by default", func() {
		Expect(store.NewFilter().Build()).To(Equal(bson.M{}))
	})

	It("builds equality conditions", func() {
		filter := store.NewFilter().Eq("name", "test").Build()
		Expect(filter).To(Equal(bson.M{"name": "test"}))
	})

	It("builds an id filter", func() {
		id := primitive.NewObjectID()
		Expect(store.ById(id).Build()).To(Equal(bson.M{"_id": id}))
	})

	It("merges operators on the same field", func() {
		filter := store.NewFilter().
			Gte("age", 18).
			Lt("age", 65).
			Build()
		Expect(filter).To(Equal(bson.M{"age": bson.M{"$gte": 18, "$lt": 65}}))
	})

	It("builds membership and existence conditions", func() {
		filter := store.NewFilter().
			In("status", "active", "pending").
			Exists("deletedAt", false).
			Build()
		Expect(filter).To(Equal(bson.M{
			"status":    bson.M{"$in": bson.A{"active", "pending"}},
			"deletedAt": bson.M{"$exists": false},
		}))
	})

	It("builds regex conditions", func() {
		filter := store.NewFilter().Regex("email", "@example\\.org$", "i").Build()
		Expect(filter).To(Equal(bson.M{
			"email": primitive.Regex{Pattern: "@example\\.org$", Options: "i"},
		}))
	})
})
