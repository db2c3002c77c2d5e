package archive

import (
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"taskapi/internal/envelope"
)

// Package archive defines the MessagePack snapshot written to object storage
// for every invocation: the raw payload alongside the envelope it produced.

// Record is the archived form of one invocation.
type Record struct {
	ID         string            `json:"id" msgpack:"id"`
	Component  string            `json:"component" msgpack:"component"`
	Operation  string            `json:"operation" msgpack:"operation"`
	Payload    any               `json:"payload" msgpack:"payload"`
	Result     envelope.Envelope `json:"result" msgpack:"result"`
	ArchivedAt time.Time         `json:"archived_at" msgpack:"archived_at"`
}

// Encode serializes a record to MessagePack.
func Encode(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	return msgpack.Marshal(rec)
}

// Decode deserializes MessagePack data into a record.
func Decode(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, errors.New("archive payload is empty")
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
