package chathandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/domain"
	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/domain/conversation"
	"docchat/chat-gateway/internal/domain/usage"
	"docchat/chat-gateway/internal/infrastructure/ragclient"
)

type memoryStore struct {
	mu    sync.Mutex
	seq   int
	convs []*conversation.Conversation
}

func (m *memoryStore) Create(_ context.Context, ownerID, title string, history []chat.Message) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	conv := conversation.NewConversation(fmt.Sprintf("conv_test%011d", m.seq), ownerID, title, history)
	m.convs = append(m.convs, conv)
	return conv.Clone(), nil
}

func (m *memoryStore) ListByOwner(_ context.Context, ownerID string) ([]*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*conversation.Conversation
	for _, conv := range m.convs {
		if conv.OwnerID == ownerID {
			out = append(out, conv.Clone())
		}
	}
	return out, nil
}

func (m *memoryStore) Rename(_ context.Context, ownerID, publicID, newTitle string) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conv := range m.convs {
		if conv.OwnerID == ownerID && conv.PublicID == publicID {
			conv.Title = newTitle
			return conv.Clone(), nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *memoryStore) UpdateHistory(_ context.Context, ownerID, publicID string, history []chat.Message) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conv := range m.convs {
		if conv.OwnerID == ownerID && conv.PublicID == publicID {
			conv.History = append([]chat.Message(nil), history...)
			return conv.Clone(), nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *memoryStore) Delete(_ context.Context, ownerID, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.convs[:0]
	for _, conv := range m.convs {
		if conv.OwnerID != ownerID || conv.PublicID != publicID {
			kept = append(kept, conv)
		}
	}
	m.convs = kept
	return nil
}

type staticUsage struct {
	remaining *int
}

func (s *staticUsage) FetchUsage(_ context.Context, _ string) (usage.Snapshot, error) {
	return usage.Snapshot{Remaining: s.remaining, Tier: usage.TierFree}, nil
}

type relayFixture struct {
	router *gin.Engine
	store  *memoryStore
}

func newRelayFixture(t *testing.T, backend http.HandlerFunc, remaining *int, withIdentity bool) *relayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := &memoryStore{}
	cache := conversation.NewCache(store, time.Minute, time.Second)
	autosaves := conversation.NewAutosaveManager(cache, 0)
	usageService := usage.NewService(&staticUsage{remaining: remaining}, time.Minute)
	client := ragclient.NewClient(server.URL, 5*time.Second)

	handler := NewRelayHandler(client, usageService, autosaves, &config.Config{})

	router := gin.New()
	if withIdentity {
		router.Use(func(c *gin.Context) {
			c.Set("identity", domain.Identity{ID: "user-1", AuthMethod: domain.AuthMethodAnonymous, Subject: "user-1"})
		})
	}
	router.POST("/v1/chat/relay", handler.Relay)

	return &relayFixture{router: router, store: store}
}

func relayBody(t *testing.T, messages []chat.Message) *strings.Reader {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"messages": messages})
	require.NoError(t, err)
	return strings.NewReader(string(payload))
}

// decodeFrames parses the "0:<json>\n" frame protocol back into the answer.
func decodeFrames(t *testing.T, body string) string {
	t.Helper()
	var sb strings.Builder
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "0:"), "unexpected frame %q", line)
		var fragment string
		require.NoError(t, json.Unmarshal([]byte(line[2:]), &fragment))
		sb.WriteString(fragment)
	}
	return sb.String()
}

func remainingPtr(v int) *int { return &v }

func userTurn(text string) []chat.Message {
	return []chat.Message{{Role: chat.RoleUser, Text: text}}
}

func TestRelayStreamsCleanedAnswer(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "X is [DOCUMENT 1] a thing."})
	}, remainingPtr(10), true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("what is X?")))
	fixture.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "X is a thing.", decodeFrames(t, rec.Body.String()))
}

func TestRelayPassesBackendQuotaRejectionThrough(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Daily limit reached"})
	}, remainingPtr(10), true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("one more question")))
	fixture.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Daily limit reached", body["error"])
}

func TestRelayFallsBackOnOpaqueBackendError(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("panic: everything is on fire"))
	}, remainingPtr(10), true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("q")))
	fixture.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Backend error", body["error"])
}

func TestRelayUnreachableBackendReturnsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := &memoryStore{}
	cache := conversation.NewCache(store, time.Minute, time.Second)
	autosaves := conversation.NewAutosaveManager(cache, 0)
	usageService := usage.NewService(&staticUsage{remaining: remainingPtr(10)}, time.Minute)
	client := ragclient.NewClient(server.URL, time.Second)
	handler := NewRelayHandler(client, usageService, autosaves, &config.Config{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("identity", domain.Identity{ID: "user-1", AuthMethod: domain.AuthMethodAnonymous, Subject: "user-1"})
	})
	router.POST("/v1/chat/relay", handler.Relay)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("q")))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend unavailable")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRelayRequiresIdentity(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called")
	}, remainingPtr(10), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("q")))
	fixture.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing identity")
}

func TestRelayRejectsBadTranscriptShape(t *testing.T) {
	tests := []struct {
		name     string
		messages []chat.Message
	}{
		{name: "empty transcript", messages: []chat.Message{}},
		{name: "ends with assistant turn", messages: []chat.Message{
			{Role: chat.RoleUser, Text: "q"},
			{Role: chat.RoleAssistant, Text: "a"},
		}},
		{name: "blank final text", messages: userTurn("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("backend must not be called")
			}, remainingPtr(10), true)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, tt.messages))
			fixture.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRelayBlocksWhenQuotaExhausted(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called when the gate blocks")
	}, remainingPtr(0), true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("q")))
	fixture.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Daily limit reached")
}

func TestRelayEmptyAnswerUsesFallback(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "  [DOCUMENT 2]  "})
	}, remainingPtr(10), true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("q")))
	fixture.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No response available", decodeFrames(t, rec.Body.String()))
}

func TestRelayAutosavesCompletedExchange(t *testing.T) {
	fixture := newRelayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "saved answer"})
	}, remainingPtr(10), true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/relay", relayBody(t, userTurn("what is the notice period?")))
	fixture.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	fixture.store.mu.Lock()
	defer fixture.store.mu.Unlock()
	require.Len(t, fixture.store.convs, 1)
	saved := fixture.store.convs[0]
	assert.Equal(t, "user-1", saved.OwnerID)
	assert.Equal(t, "what is the notice period?", saved.Title)
	require.Len(t, saved.History, 2)
	assert.Equal(t, chat.RoleAssistant, saved.History[1].Role)
	assert.Equal(t, "saved answer", saved.History[1].Text)
}
