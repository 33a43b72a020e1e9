package cdc_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/docstream/cdc-worker/cdc"
	"github.com/docstream/cdc-worker/test"
)

var _ = Describe("Event", func() {
	It("normalizes a server notification", func() {
		fixture, err := test.LoadFixture("test/fixtures/insert_event.json")
		Expect(err).ToNot(HaveOccurred())

		var raw bson.Raw
		Expect(bson.UnmarshalExtJSON(fixture, false, &raw)).To(Succeed())

		stream := newFakeStream()
		watcher := newFakeWatcher(watchResult{stream: stream})
		handler := &recordingHandler{}

		engine, err := cdc.NewEngine[testDoc](cdc.Params[testDoc]{
			Watcher: watcher,
			Logger:  zap.NewNop().Sugar(),
		})
		Expect(err).ToNot(HaveOccurred())
		engine.AddHandler(handler)
		Expect(engine.Start()).To(Succeed())
		defer engine.Stop()

		stream.Emit(raw, makeToken(1))

		Eventually(handler.EventCount).Should(Equal(1))
		event := handler.Events()[0]
		Expect(event.OperationType).To(Equal(cdc.OperationTypeInsert))
		Expect(event.FullDocument).ToNot(BeNil())
		Expect(event.FullDocument.Name).To(Equal("test"))
		Expect(event.Namespace).To(Equal(cdc.Namespace{Database: "docs", Collection: "items"}))
		Expect(event.ClusterTime.T).To(Equal(uint32(1700000000)))

		id, ok := event.DocumentID()
		Expect(ok).To(BeTrue())
		Expect(id.Hex()).To(Equal("65539abcdef0123456789012"))
		Expect(event.IsDocumentOperation()).To(BeTrue())
	})

	It("reports collection level operations as non-document changes", func() {
		event := cdc.Event[testDoc]{OperationType: cdc.OperationTypeDrop}
		Expect(event.IsDocumentOperation()).To(BeFalse())

		_, ok := event.DocumentID()
		Expect(ok).To(BeFalse())
	})

	It("converts bson object ids and dates for JSON forwarding", func() {
		type stamped struct {
			Id cdc.ObjectId `bson:"_id"`
			At cdc.Date     `bson:"at"`
		}

		id := primitive.NewObjectID()
		at := time.UnixMilli(1725664480753)
		raw, err := bson.Marshal(bson.M{"_id": id, "at": primitive.NewDateTimeFromTime(at)})
		Expect(err).ToNot(HaveOccurred())

		var doc stamped
		Expect(bson.Unmarshal(raw, &doc)).To(Succeed())
		Expect(doc.Id.Value).To(Equal(id.Hex()))
		Expect(doc.At.Value).To(Equal(int64(1725664480753)))
		Expect(doc.At.Time().Equal(at)).To(BeTrue())
	})
})
