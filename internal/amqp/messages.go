package amqp

import (
	"encoding/json"
	"time"

	"prodhub/internal/store"
)

// RecordChangedMessage announces that a collection changed. It carries no
// record body; consumers reload the collection from the shared backend.
type RecordChangedMessage struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	ID         string    `json:"id,omitempty"`
	Revision   uint64    `json:"revision"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecordChangedMessage converts a store change into a message.
func NewRecordChangedMessage(c store.Change) *RecordChangedMessage {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &RecordChangedMessage{
		Collection: c.Collection,
		Action:     c.Action,
		ID:         c.ID,
		Revision:   c.Revision,
		Timestamp:  ts,
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
