package conversation

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/infrastructure/logger"
	"docchat/chat-gateway/internal/infrastructure/metrics"
)

const (
	titleMaxRunes      = 50
	minPersistMessages = 2
)

// DefaultTitle derives a conversation title from the first user turn,
// truncated to 50 runes with an ellipsis. When the transcript has no user
// text the creation timestamp is used instead.
func DefaultTitle(history []chat.Message, now time.Time) string {
	text, ok := chat.FirstUserText(history)
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return "Conversation from " + now.Format("Jan 2, 2006, 3:04 PM")
	}
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleMaxRunes]) + "..."
}

// Autosaver coordinates background persistence of one identity's active
// transcript. It tracks an explicit state container rather than inferring
// progress from the store: the current transcript, whether an assistant
// turn is still composing, the transcript length at last persist, and the
// bound conversation id once the first save creates a record.
//
// A transcript is persisted only when all of these hold: no turn is
// composing, the transcript has at least two messages, and the transcript
// is longer than what was last persisted. Saves are single-flight; writes
// that arrive while one is in progress coalesce into one trailing save.
type Autosaver struct {
	cache    *Cache
	ownerID  string
	debounce time.Duration

	mu             sync.Mutex
	transcript     []chat.Message
	composing      bool
	lastPersisted  int
	conversationID string
	timer          *time.Timer
	saving         bool
	dirty          bool
}

// NewAutosaver wires an autosaver for one owner. A non-positive debounce
// makes saves synchronous, which tests rely on.
func NewAutosaver(cache *Cache, ownerID string, debounce time.Duration) *Autosaver {
	return &Autosaver{cache: cache, ownerID: ownerID, debounce: debounce}
}

// ConversationID returns the bound conversation id, empty until the first
// successful create.
func (a *Autosaver) ConversationID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conversationID
}

// SetComposing marks whether an assistant turn is mid-stream. Clearing the
// flag re-evaluates the transcript, so a save deferred by composing fires
// once the turn completes.
func (a *Autosaver) SetComposing(ctx context.Context, composing bool) {
	a.mu.Lock()
	a.composing = composing
	shouldSave := !composing && a.shouldPersistLocked()
	a.mu.Unlock()
	if shouldSave {
		a.schedule(ctx)
	}
}

// Observe records the latest transcript and schedules a debounced save
// when the persistence conditions hold.
func (a *Autosaver) Observe(ctx context.Context, transcript []chat.Message) {
	a.mu.Lock()
	a.transcript = append([]chat.Message(nil), transcript...)
	shouldSave := a.shouldPersistLocked()
	a.mu.Unlock()
	if shouldSave {
		a.schedule(ctx)
	}
}

// Reset clears all state for a fresh conversation.
func (a *Autosaver) Reset() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.transcript = nil
	a.composing = false
	a.lastPersisted = 0
	a.conversationID = ""
	a.dirty = false
	a.mu.Unlock()
}

// Load binds the autosaver to an existing conversation, so further
// observations update it instead of creating a new record.
func (a *Autosaver) Load(conv *Conversation) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.transcript = append([]chat.Message(nil), conv.History...)
	a.composing = false
	a.lastPersisted = len(conv.History)
	a.conversationID = conv.PublicID
	a.dirty = false
	a.mu.Unlock()
}

// Flush persists immediately, bypassing the debounce. Used on shutdown and
// when the caller needs the bound id right away.
func (a *Autosaver) Flush(ctx context.Context) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.save(ctx)
}

func (a *Autosaver) shouldPersistLocked() bool {
	if a.composing {
		return false
	}
	if len(a.transcript) < minPersistMessages {
		return false
	}
	return len(a.transcript) > a.lastPersisted
}

func (a *Autosaver) schedule(ctx context.Context) {
	if a.debounce <= 0 {
		a.save(ctx)
		return
	}
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() {
		a.save(context.WithoutCancel(ctx))
	})
	a.mu.Unlock()
}

func (a *Autosaver) save(ctx context.Context) {
	a.mu.Lock()
	if a.saving {
		a.dirty = true
		a.mu.Unlock()
		return
	}
	if !a.shouldPersistLocked() {
		a.mu.Unlock()
		return
	}
	transcript := append([]chat.Message(nil), a.transcript...)
	id := a.conversationID
	a.saving = true
	a.mu.Unlock()

	var err error
	if id == "" {
		var created *Conversation
		created, err = a.cache.Create(ctx, a.ownerID, DefaultTitle(transcript, time.Now()), transcript)
		if err == nil {
			id = created.PublicID
		}
	} else {
		err = a.cache.UpdateHistory(ctx, a.ownerID, id, transcript)
	}

	a.mu.Lock()
	a.saving = false
	if err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Str("owner_id", a.ownerID).Msg("conversation autosave failed")
		metrics.AutosaveTotal.WithLabelValues("error").Inc()
	} else {
		a.conversationID = id
		if len(transcript) > a.lastPersisted {
			a.lastPersisted = len(transcript)
		}
		metrics.AutosaveTotal.WithLabelValues("success").Inc()
	}
	rerun := a.dirty
	a.dirty = false
	a.mu.Unlock()

	if rerun {
		a.save(ctx)
	}
}

// AutosaveManager hands out one autosaver per identity.
type AutosaveManager struct {
	cache    *Cache
	debounce time.Duration

	mu         sync.Mutex
	autosavers map[string]*Autosaver
}

func NewAutosaveManager(cache *Cache, debounce time.Duration) *AutosaveManager {
	return &AutosaveManager{
		cache:      cache,
		debounce:   debounce,
		autosavers: make(map[string]*Autosaver),
	}
}

// For returns the autosaver bound to an owner, creating it on first use.
func (m *AutosaveManager) For(ownerID string) *Autosaver {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.autosavers[ownerID]; ok {
		return a
	}
	a := NewAutosaver(m.cache, ownerID, m.debounce)
	m.autosavers[ownerID] = a
	return a
}
