package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		raw    string
		host   string
		port   int
		useTLS bool
	}{
		{raw: "localhost:6334", host: "localhost", port: 6334},
		{raw: "qdrant", host: "qdrant", port: defaultPort},
		{raw: "http://10.0.0.5:7000", host: "10.0.0.5", port: 7000},
		{raw: "https://example.cloud.qdrant.io:6334", host: "example.cloud.qdrant.io", port: 6334, useTLS: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, port, useTLS, err := parseAddress(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.useTLS, useTLS)
		})
	}
}

func TestParseAddressRejectsBadPort(t *testing.T) {
	_, _, _, err := parseAddress("localhost:abc")
	assert.Error(t, err)
}

func TestNewRequiresURLAndSize(t *testing.T) {
	_, err := New(Config{VectorSize: 1536}, nil)
	assert.Error(t, err)

	_, err = New(Config{URL: "localhost:6334"}, nil)
	assert.Error(t, err)
}

func TestPointIDIsStable(t *testing.T) {
	assert.Equal(t, pointID("faq"), pointID("faq"))
	assert.NotEqual(t, pointID("faq"), pointID("guide"))
	assert.Len(t, pointID("faq"), 36)
}

func TestPayloadRoundTrip(t *testing.T) {
	payload, err := buildPayload("faq", "question\nanswer", map[string]any{"title": "faq", "path": "documents/faq.docx"})
	require.NoError(t, err)

	entry := entryFromPayload(pointID("faq"), payload, []float32{0.5, 0.25})
	assert.Equal(t, "faq", entry.ID)
	assert.Equal(t, "question\nanswer", entry.Document)
	assert.Equal(t, map[string]any{"title": "faq", "path": "documents/faq.docx"}, entry.Metadata)
	assert.Equal(t, []float32{0.5, 0.25}, entry.Embedding)
}

func TestEntryWithoutEntryIDFallsBackToPointID(t *testing.T) {
	id := pointID("orphan")
	entry := entryFromPayload(id, map[string]*qdrant.Value{"title": qdrant.NewValueString("orphan")}, nil)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, "orphan", entry.Metadata["title"])
}
