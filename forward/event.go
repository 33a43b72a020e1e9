package forward

import (
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/docstream/cdc-worker/cdc"
)

const eventTypePrefix = "com.docstream.cdc."

// Payload is the JSON body of a forwarded change event.
type Payload[Document any] struct {
	OperationType     cdc.OperationType      `json:"operationType"`
	DocumentId        string                 `json:"documentId,omitempty"`
	FullDocument      *Document              `json:"fullDocument,omitempty"`
	UpdateDescription *cdc.UpdateDescription `json:"updateDescription,omitempty"`
	Database          string                 `json:"database"`
	Collection        string                 `json:"collection"`
}

// NewCloudEvent wraps a change event in a CloudEvents envelope. The event
// type carries the operation, the subject the affected document id when one
// exists.
func NewCloudEvent[Document any](source string, event cdc.Event[Document]) (cloudevents.Event, error) {
	payload := Payload[Document]{
		OperationType:     event.OperationType,
		FullDocument:      event.FullDocument,
		UpdateDescription: event.UpdateDescription,
		Database:          event.Namespace.Database,
		Collection:        event.Namespace.Collection,
	}

	ce := cloudevents.NewEvent()
	ce.SetID(uuid.NewString())
	ce.SetSource(source)
	ce.SetType(eventTypePrefix + string(event.OperationType))
	ce.SetTime(time.Now())
	if id, ok := event.DocumentID(); ok {
		ce.SetSubject(id.Hex())
		payload.DocumentId = id.Hex()
	}

	if err := ce.SetData(cloudevents.ApplicationJSON, payload); err != nil {
		return cloudevents.Event{}, fmt.Errorf("encoding change event: %w", err)
	}
	return ce, nil
}
