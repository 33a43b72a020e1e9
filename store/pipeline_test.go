package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docstream/cdc-worker/cdc"
	"github.com/docstream/cdc-worker/store"
)

var _ = Describe("Pipeline", func() {
	It("preserves stage order", func() {
		pipeline := store.NewPipeline().
			Match(bson.M{"status": "active"}).
			Sort(bson.D{{Key: "createdAt", Value: -1}}).
			Skip(10).
			Limit(5).
			Build()

		Expect(pipeline).To(Equal(mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{"status": "active"}}},
			bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
			bson.D{{Key: "$skip", Value: int64(10)}},
			bson.D{{Key: "$limit", Value: int64(5)}},
		}))
	})

	It("builds group stages with accumulators", func() {
		pipeline := store.NewPipeline().
			Group("$status", bson.M{"count": bson.M{"$sum": 1}}).
			Build()

		Expect(pipeline).To(HaveLen(1))
		Expect(pipeline[0][0].Key).To(Equal("$group"))
		Expect(pipeline[0][0].Value).To(Equal(bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}))
	})

	It("restricts change streams to operation types", func() {
		pipeline := store.OperationTypeFilter(cdc.OperationTypeInsert, cdc.OperationTypeUpdate)

		Expect(pipeline).To(Equal(mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{
				"operationType": bson.M{"$in": bson.A{"insert", "update"}},
			}}},
		}))
	})

	It("restricts change streams to a namespace", func() {
		pipeline := store.NamespaceFilter("docs", "items", "archive")

		Expect(pipeline).To(Equal(mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{
				"ns.db":   "docs",
				"ns.coll": bson.M{"$in": bson.A{"items", "archive"}},
			}}},
		}))
	})

	It("matches a whole database when no collections are given", func() {
		pipeline := store.NamespaceFilter("docs")

		Expect(pipeline).To(Equal(mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{"ns.db": "docs"}}},
		}))
	})
})
