package queue

import "encoding/json"

// Kind identifies which inconsistency a reconcile notice reports.
type Kind string

const (
	// KindOrphanBlob: a blob was written but the compensating delete failed.
	KindOrphanBlob Kind = "orphan_blob"
	// KindIndexMissing: a document row exists without a confirmed index entry.
	KindIndexMissing Kind = "index_missing"
	// KindIndexStale: an index entry may outlive its deleted document row.
	KindIndexStale Kind = "index_stale"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOrphanBlob, KindIndexMissing, KindIndexStale:
		return true
	}
	return false
}

// CurrentVersion is the payload version written by this build.
const CurrentVersion = 1

// Message is the reconcile notice sent to downstream consumers.
type Message struct {
	Kind       Kind   `json:"kind"`
	DocumentID string `json:"documentId,omitempty"`
	UserID     string `json:"userId"`
	StorageKey string `json:"storageKey,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
