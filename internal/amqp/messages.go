package amqp

import (
	"encoding/json"
	"time"
)

// Collections a change event can refer to.
const (
	CollectionCategories = "categories"
	CollectionExpenses   = "expenses"
	CollectionFunders    = "funders"
)

// Actions a change event can carry.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChangeMessage announces that one record in one collection changed.
// It carries only the coordinates of the change; the worker re-reads the
// store for current state, so stale or duplicate deliveries are harmless.
type RecordChangeMessage struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(collection, id, action string) *RecordChangeMessage {
	return &RecordChangeMessage{
		Collection: collection,
		ID:         id,
		Action:     action,
		Timestamp:  time.Now(),
	}
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
