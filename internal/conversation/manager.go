package conversation

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/beautypizza/bella/internal/llm"
	"github.com/beautypizza/bella/internal/tools"
)

// Manager hands out one Conversation per session id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Conversation

	client           llm.Client
	model            string
	registry         *tools.Registry
	maxToolRounds    int
	historyExchanges int
	logger           *slog.Logger
}

func NewManager(client llm.Client, model string, registry *tools.Registry, maxToolRounds, historyExchanges int, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:         make(map[string]*Conversation),
		client:           client,
		model:            model,
		registry:         registry,
		maxToolRounds:    maxToolRounds,
		historyExchanges: historyExchanges,
		logger:           logger,
	}
}

// Get returns the conversation for the session id, creating it on first
// use. An empty id gets a fresh random session.
func (m *Manager) Get(sessionID string) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if c, ok := m.sessions[sessionID]; ok {
		return c
	}
	c := New(sessionID, m.client, m.model, m.registry, m.maxToolRounds, m.historyExchanges, m.logger)
	m.sessions[sessionID] = c
	return c
}

// Lookup returns the conversation for the session id without creating
// one.
func (m *Manager) Lookup(sessionID string) (*Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[sessionID]
	return c, ok
}

// Reset clears the named session if it exists.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	c, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if ok {
		c.Reset()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
