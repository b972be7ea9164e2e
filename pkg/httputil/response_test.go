package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"foo": "bar"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusInternalServerError, "resolve_failed", "boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var result map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "resolve_failed", result["error"])
	assert.Equal(t, "boom", result["message"])
}

func TestNewJSONResponse(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "https://genes.example.org/api/stats", nil)

	resp, err := NewJSONResponse(req, http.StatusOK, map[string]any{"data": map[string]any{"records": []any{}}})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "200 OK", resp.Status)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Same(t, req, resp.Request)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"records":[]}}`, string(body))
	assert.Equal(t, int64(len(body)), resp.ContentLength)
}

func TestNewJSONResponse_Unencodable(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "http://h/", nil)

	_, err := NewJSONResponse(req, http.StatusOK, map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
