// Package session keeps bounded per-session conversation history. Only
// user and assistant text turns are retained; tool calls and tool results
// never persist beyond the request that produced them.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/store"
)

// DefaultMaxTurns is how many recent turns a session carries into the model.
const DefaultMaxTurns = 20

// Manager reads and appends session history. Appends within one session are
// serialized so interleaved requests cannot corrupt turn order.
type Manager struct {
	store    store.SessionStore
	maxTurns int
	maxAge   time.Duration // 0 means no staleness cutoff
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager builds a session manager. maxTurns <= 0 selects
// DefaultMaxTurns; maxAge <= 0 disables the staleness cutoff.
func NewManager(s store.SessionStore, maxTurns int, maxAge time.Duration) *Manager {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Manager{
		store:    s,
		maxTurns: maxTurns,
		maxAge:   maxAge,
		now:      time.Now,
		locks:    map[string]*sync.Mutex{},
	}
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	return l
}

// History returns the session's recent turns, oldest-first, bounded by the
// turn limit and the staleness cutoff.
func (m *Manager) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	var since time.Time
	if m.maxAge > 0 {
		since = m.now().UTC().Add(-m.maxAge)
	}
	turns, err := m.store.GetTurns(ctx, sessionID, m.maxTurns, since)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return turns, nil
}

// AppendExchange records one completed request: the user's message followed
// by the assistant's final reply, as a single ordered unit.
func (m *Manager) AppendExchange(ctx context.Context, sessionID, userMsg, assistantMsg string) error {
	l := m.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	now := m.now().UTC()
	if err := m.store.AppendTurn(ctx, &domain.Turn{
		SessionID: sessionID,
		Role:      domain.ChatRoleUser,
		Content:   userMsg,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("append user turn: %w", err)
	}
	if err := m.store.AppendTurn(ctx, &domain.Turn{
		SessionID: sessionID,
		Role:      domain.ChatRoleAssistant,
		Content:   assistantMsg,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("append assistant turn: %w", err)
	}
	return nil
}

// Clear drops a session's history entirely.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	l := m.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()
	return m.store.ClearSession(ctx, sessionID)
}
