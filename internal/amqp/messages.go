package amqp

import (
	"encoding/json"
	"time"
)

// TransactionExportMessage is the lightweight queue message for exporting a
// transaction to Google Sheets. It carries only the ID and version; the worker
// fetches the full transaction from the database so it always exports the
// latest state.
type TransactionExportMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionExportMessage creates a new export message with just ID and version
func NewTransactionExportMessage(id, version int64) *TransactionExportMessage {
	return &TransactionExportMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionExportMessageFromJSON creates a message from JSON bytes
func TransactionExportMessageFromJSON(data []byte) (*TransactionExportMessage, error) {
	var msg TransactionExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
