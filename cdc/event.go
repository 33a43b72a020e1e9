package cdc

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OperationType string

const (
	OperationTypeInsert       OperationType = "insert"
	OperationTypeUpdate       OperationType = "update"
	OperationTypeReplace      OperationType = "replace"
	OperationTypeDelete       OperationType = "delete"
	OperationTypeDrop         OperationType = "drop"
	OperationTypeRename       OperationType = "rename"
	OperationTypeDropDatabase OperationType = "dropDatabase"
	OperationTypeInvalidate   OperationType = "invalidate"
)

// Namespace identifies the database and collection a change occurred in.
type Namespace struct {
	Database   string `bson:"db" json:"db"`
	Collection string `bson:"coll" json:"coll"`
}

// UpdateDescription describes the delta of an update operation.
// UpdatedFields maps dotted field paths to their new values, RemovedFields
// preserves the order reported by the server.
type UpdateDescription struct {
	UpdatedFields bson.M   `bson:"updatedFields" json:"updatedFields"`
	RemovedFields []string `bson:"removedFields" json:"removedFields"`
}

// Event is the normalized representation of a single change stream
// notification. FullDocument is only populated when the server supplied one,
// which depends on the configured full document mode and the operation type.
// UpdateDescription is present exactly when OperationType is update.
// ClusterTime is informational and plays no part in resumption.
type Event[Document any] struct {
	OperationType     OperationType       `json:"operationType"`
	DocumentKey       bson.Raw            `json:"-"`
	FullDocument      *Document           `json:"fullDocument"`
	UpdateDescription *UpdateDescription  `json:"updateDescription"`
	Namespace         Namespace           `json:"ns"`
	ClusterTime       primitive.Timestamp `json:"-"`
}

// DocumentID extracts the _id from the document key. It returns false for
// collection or database level operations, or when the key is not an ObjectID.
func (e Event[Document]) DocumentID() (primitive.ObjectID, bool) {
	if len(e.DocumentKey) == 0 {
		return primitive.NilObjectID, false
	}
	id, ok := e.DocumentKey.Lookup("_id").ObjectIDOK()
	return id, ok
}

// IsDocumentOperation reports whether the event affects a single document, as
// opposed to a collection or database level change.
func (e Event[Document]) IsDocumentOperation() bool {
	switch e.OperationType {
	case OperationTypeInsert, OperationTypeUpdate, OperationTypeReplace, OperationTypeDelete:
		return true
	}
	return false
}

// rawEvent mirrors the wire shape of a change stream notification.
type rawEvent struct {
	OperationType     string                `bson:"operationType"`
	DocumentKey       bson.Raw              `bson:"documentKey,omitempty"`
	FullDocument      bson.Raw              `bson:"fullDocument,omitempty"`
	UpdateDescription *rawUpdateDescription `bson:"updateDescription,omitempty"`
	Namespace         Namespace             `bson:"ns"`
	ClusterTime       primitive.Timestamp   `bson:"clusterTime"`
}

type rawUpdateDescription struct {
	UpdatedFields bson.M   `bson:"updatedFields"`
	RemovedFields []string `bson:"removedFields"`
}

// decodeEvent unmarshals a raw notification into a normalized event, decoding
// the full document into the target document type when the server supplied one.
func decodeEvent[Document any](raw bson.Raw) (Event[Document], error) {
	var wire rawEvent
	if err := bson.Unmarshal(raw, &wire); err != nil {
		return Event[Document]{}, err
	}

	event := Event[Document]{
		OperationType: OperationType(wire.OperationType),
		DocumentKey:   wire.DocumentKey,
		Namespace:     wire.Namespace,
		ClusterTime:   wire.ClusterTime,
	}
	if len(wire.FullDocument) > 0 {
		doc := new(Document)
		if err := bson.Unmarshal(wire.FullDocument, doc); err != nil {
			return Event[Document]{}, err
		}
		event.FullDocument = doc
	}
	if event.OperationType == OperationTypeUpdate && wire.UpdateDescription != nil {
		event.UpdateDescription = &UpdateDescription{
			UpdatedFields: wire.UpdateDescription.UpdatedFields,
			RemovedFields: wire.UpdateDescription.RemovedFields,
		}
	}
	return event, nil
}
