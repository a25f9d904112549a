package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var ErrNotFound = errors.New("client session not found")

// Message is one entry in the advisory, in-memory conversation log.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	AgentID   string    `json:"agent_id"`
}

// SwitchRecord notes one persona change within a session.
type SwitchRecord struct {
	Timestamp time.Time `json:"timestamp"`
	FromAgent string    `json:"from_agent"`
	ToAgent   string    `json:"to_agent"`
	Reason    string    `json:"reason,omitempty"`
}

// Stats summarizes a live session.
type Stats struct {
	SessionID       string   `json:"session_id"`
	DurationSeconds float64  `json:"duration_seconds"`
	CurrentAgent    string   `json:"current_agent"`
	MessageCount    int      `json:"message_count"`
	SwitchCount     int      `json:"switch_count"`
	AgentsUsed      []string `json:"agents_used"`
}

type clientState struct {
	sessionID     string
	activeAgentID string
	conversation  []Message
	switches      []SwitchRecord
	audioArmed    bool
	startedAt     time.Time
}

// Manager owns all per-client mutable state. Entries are created on client
// connect and destroyed on disconnect; nothing survives the process.
type Manager struct {
	mu             sync.RWMutex
	clients        map[string]*clientState
	defaultAgentID string
}

func NewManager(defaultAgentID string) *Manager {
	return &Manager{
		clients:        make(map[string]*clientState),
		defaultAgentID: defaultAgentID,
	}
}

// Create registers a fresh session for clientID with the default persona,
// empty logs and an unarmed audio buffer. It returns the internal session id
// used for log correlation and whether an existing entry was replaced.
func (m *Manager) Create(clientID string) (string, bool) {
	s := &clientState{
		sessionID:     uuid.NewString(),
		activeAgentID: m.defaultAgentID,
		startedAt:     time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, replaced := m.clients[clientID]
	m.clients[clientID] = s
	return s.sessionID, replaced
}

// ActiveAgent returns the current persona id for clientID.
func (m *Manager) ActiveAgent(clientID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.clients[clientID]
	if !ok {
		return "", ErrNotFound
	}
	return s.activeAgentID, nil
}

// SetActiveAgent updates the current persona id for clientID.
func (m *Manager) SetActiveAgent(clientID, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	s.activeAgentID = agentID
	return nil
}

// RecordMessage appends to the conversation log. An empty agentID attributes
// the message to the current persona.
func (m *Manager) RecordMessage(clientID string, role Role, content, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	if agentID == "" {
		agentID = s.activeAgentID
	}
	s.conversation = append(s.conversation, Message{
		Timestamp: time.Now().UTC(),
		Role:      role,
		Content:   content,
		AgentID:   agentID,
	})
	return nil
}

// RecordSwitch appends a persona-switch record. Switching to the already
// active persona succeeds without appending anything.
func (m *Manager) RecordSwitch(clientID, fromID, toID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	if fromID == toID {
		return nil
	}
	s.switches = append(s.switches, SwitchRecord{
		Timestamp: time.Now().UTC(),
		FromAgent: fromID,
		ToAgent:   toID,
		Reason:    reason,
	})
	return nil
}

// ArmAudio marks unflushed audio as buffered upstream. It reports whether
// this call armed a previously empty buffer.
func (m *Manager) ArmAudio(clientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.clients[clientID]
	if !ok {
		return false, ErrNotFound
	}
	first := !s.audioArmed
	s.audioArmed = true
	return first, nil
}

// DisarmAudio resets the armed flag after a commit was issued.
func (m *Manager) DisarmAudio(clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	s.audioArmed = false
	return nil
}

// AudioArmed reports whether a commit is currently valid for clientID.
func (m *Manager) AudioArmed(clientID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.clients[clientID]
	return ok && s.audioArmed
}

// History returns the conversation log, newest last. A positive limit keeps
// only the most recent entries.
func (m *Manager) History(clientID string, limit int) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.clients[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	msgs := s.conversation
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Stats returns a summary of the session so far. AgentsUsed lists distinct
// personas in order of first appearance in the conversation log.
func (m *Manager) Stats(clientID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.clients[clientID]
	if !ok {
		return Stats{}, ErrNotFound
	}

	seen := make(map[string]struct{})
	used := make([]string, 0, 2)
	for _, msg := range s.conversation {
		if _, dup := seen[msg.AgentID]; dup {
			continue
		}
		seen[msg.AgentID] = struct{}{}
		used = append(used, msg.AgentID)
	}

	return Stats{
		SessionID:       s.sessionID,
		DurationSeconds: time.Since(s.startedAt).Seconds(),
		CurrentAgent:    s.activeAgentID,
		MessageCount:    len(s.conversation),
		SwitchCount:     len(s.switches),
		AgentsUsed:      used,
	}, nil
}

// Destroy releases all state owned for clientID. Destroying an unknown
// client is a no-op so disconnect cleanup stays idempotent.
func (m *Manager) Destroy(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, clientID)
}

// Count returns the number of live client sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
