package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/petition-service/internal/config"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.AssistantConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Model:          "gemini-2.5-pro",
		TimeoutSeconds: 5,
	})
}

func TestImproveTextParsesCandidates(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-pro")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "pothole repairs")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{
					{"text": "We respectfully urge the city "},
					{"text": "to repair Elm Street."},
				}}},
			},
		})
	})

	improved, err := client.ImproveText(context.Background(), "fix the road pls", "pothole repairs", "Infrastructure")
	require.NoError(t, err)
	assert.Equal(t, "We respectfully urge the city to repair Elm Street.", improved)
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "quota exceeded"},
		})
	})

	_, err := client.CheckClarity(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UPSTREAM_FAILED"))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateEmptyCandidatesIsError(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.SuggestTitles(context.Background(), "description", "Parks")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UPSTREAM_FAILED"))
}
