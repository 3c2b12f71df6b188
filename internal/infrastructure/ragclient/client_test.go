package ragclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/domain/usage"
)

func TestQueryForwardsTranscriptAndBearer(t *testing.T) {
	var got QueryRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/query", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(QueryResponse{Answer: "the clause is in section 4"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	resp, err := client.Query(context.Background(), "tok-123", QueryRequest{
		Query:    "where is the renewal clause?",
		CallerID: "user-1",
		ConversationHistory: []chat.Turn{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "the clause is in section 4", resp.Answer)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "where is the renewal clause?", got.Query)
	assert.Len(t, got.ConversationHistory, 2)
}

func TestQueryPreservesBackendStatusAndDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Daily limit reached"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Query(context.Background(), "tok", QueryRequest{Query: "q", CallerID: "user-1"})
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusTooManyRequests, backendErr.StatusCode)
	assert.Equal(t, "Daily limit reached", backendErr.Detail)
}

func TestQueryFallsBackOnUnparseableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream exploded</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Query(context.Background(), "tok", QueryRequest{Query: "q", CallerID: "user-1"})

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadGateway, backendErr.StatusCode)
	assert.Equal(t, "Backend error", backendErr.Detail)
}

func TestFetchUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usage", r.URL.Path)
		require.Equal(t, "user-1", r.URL.Query().Get("callerId"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"queries_today": 12,
			"query_limit":   50,
			"remaining":     38,
			"tier":          "FREE",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	snap, err := client.FetchUsage(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 12, snap.UsedToday)
	assert.Equal(t, 38, *snap.Remaining)
	assert.Equal(t, usage.TierFree, snap.Tier)
	assert.False(t, snap.Blocked())
}

func TestUploadDocumentStreamsBodyVerbatim(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/documents", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"doc-1","status":"processing"}`))
	}))
	defer server.Close()

	body := "--xx\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.pdf\"\r\n\r\npdfbytes\r\n--xx--\r\n"
	client := NewClient(server.URL, 5*time.Second)
	raw, err := client.UploadDocument(context.Background(), "tok", "multipart/form-data; boundary=xx", strings.NewReader(body))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"doc-1","status":"processing"}`, string(raw))
	assert.Equal(t, "multipart/form-data; boundary=xx", gotContentType)
	assert.Equal(t, body, string(gotBody))
}

func TestDocumentStatusPassesBodyThrough(t *testing.T) {
	payload := `{"documents":[{"name":"contract.pdf","status":"indexed"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents/status", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	raw, err := client.DocumentStatus(context.Background(), "tok")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}
