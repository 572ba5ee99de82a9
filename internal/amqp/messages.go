package amqp

import (
	"encoding/json"
	"time"
)

// ImportCompletedMessage announces that a batch of statement files landed in
// the store. Consumers drop whatever they derived from the previous data.
type ImportCompletedMessage struct {
	BatchID    string    `json:"batch_id"`
	Rows       int       `json:"rows"`
	Files      []string  `json:"files"`
	Classified int64     `json:"classified"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewImportCompletedMessage creates a message stamped with the current time
func NewImportCompletedMessage(batchID string, rows int, files []string, classified int64) *ImportCompletedMessage {
	return &ImportCompletedMessage{
		BatchID:    batchID,
		Rows:       rows,
		Files:      files,
		Classified: classified,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportCompletedMessageFromJSON creates a message from JSON bytes
func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
