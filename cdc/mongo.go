package cdc

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectId decodes a BSON object id into its hex form. Its JSON shape matches
// the extended JSON representation, so documents using it can be forwarded
// as-is.
type ObjectId struct {
	Value string `json:"$oid"`
}

func (o *ObjectId) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	var id primitive.ObjectID
	if err := raw.Unmarshal(&id); err != nil {
		return err
	}
	o.Value = id.Hex()
	return nil
}

// Date decodes a BSON datetime into epoch milliseconds.
type Date struct {
	Value int64 `json:"$date"`
}

func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	var dt primitive.DateTime
	if err := raw.Unmarshal(&dt); err != nil {
		return err
	}
	d.Value = int64(dt)
	return nil
}

func (d Date) Time() time.Time {
	return time.UnixMilli(d.Value)
}
