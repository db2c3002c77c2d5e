package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/envelope"
)

func TestEncodeDecode(t *testing.T) {
	rec := &Record{
		ID:        "inv-1",
		Component: "data-processor",
		Operation: "hash",
		Payload:   map[string]any{"a": int8(1)},
		Result: envelope.Envelope{
			Status:    envelope.StatusOK,
			Timestamp: 1700000000000,
			Data:      map[string]any{"digest": "abcd"},
		},
		ArchivedAt: time.UnixMilli(1700000000000).UTC(),
	}

	data, err := Encode(rec)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Component, got.Component)
	assert.Equal(t, rec.Operation, got.Operation)
	assert.Equal(t, envelope.StatusOK, got.Result.Status)
	assert.Equal(t, rec.Result.Timestamp, got.Result.Timestamp)
	assert.True(t, rec.ArchivedAt.Equal(got.ArchivedAt))
}

func TestEncode_NilRecord(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}
