package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsSortableAndUnique(t *testing.T) {
	t.Parallel()

	prev := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		assert.True(t, IsID(next))
		assert.Less(t, prev, next)
		prev = next
	}
	assert.False(t, IsID("not-an-id"))
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ContentHash([]byte("a,b\n")), ContentHash([]byte("a,b\n")))
	assert.NotEqual(t, ContentHash([]byte("a,b\n")), ContentHash([]byte("a,c\n")))
	assert.Len(t, ContentHash(nil), 64)
}

func TestSendJSONError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SendJSONError(rec, "bad file", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad file", body["error"])
}
