package draftsmith

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/draftsmith/draftsmith/stores"
)

// Session binds an agent to one conversation and serializes its turns: at
// most one generation is in flight per conversation id. Concurrent requests
// for different conversations proceed independently through their own
// sessions.
type Session struct {
	ConversationID string

	agent *Agent
	store stores.MessageStore

	mu sync.Mutex
	// turns is the authoritative history when no store is configured.
	turns []stores.Turn
}

// NewSession creates a session for the given conversation id. An empty id
// gets a fresh uuid. When the agent's config carries a MessageStore the
// session reads and persists turns through it, otherwise history lives in
// memory for the session's lifetime.
func NewSession(agent *Agent, conversationID string) *Session {
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	return &Session{
		ConversationID: conversationID,
		agent:          agent,
		store:          agent.config.Store,
	}
}

// Run executes one generation turn against the conversation's history and
// persists the turns the request produced. Callers blocked behind an
// in-flight turn observe its appended turns before starting their own.
func (s *Session) Run(ctx context.Context, text string, progress ProgressFunc) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, err := s.loadTurns()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load conversation %s: %w", s.ConversationID, err)
	}

	history := stores.NewHistory(prior)
	historyJSON, err := history.Serialize()
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize history for %s: %w", s.ConversationID, err)
	}

	result := s.agent.GenerateWithProgress(ctx, s.ConversationID, text, historyJSON, progress)

	updated, err := stores.LoadHistory(result.HistoryJSON)
	if err != nil {
		return result, fmt.Errorf("failed to reload history for %s: %w", s.ConversationID, err)
	}
	newTurns := updated.Turns()[len(prior):]

	if err := s.saveTurns(newTurns); err != nil {
		return result, fmt.Errorf("failed to persist turns for %s: %w", s.ConversationID, err)
	}
	return result, nil
}

// History returns the conversation's turns as currently persisted.
func (s *Session) History() ([]stores.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTurns()
}

func (s *Session) loadTurns() ([]stores.Turn, error) {
	if s.store == nil {
		return s.turns, nil
	}
	turns, err := s.store.FetchTurns(s.ConversationID)
	if err != nil {
		return nil, err
	}
	return stores.SanitizeTurns(turns), nil
}

func (s *Session) saveTurns(newTurns []stores.Turn) error {
	if s.store == nil {
		s.turns = append(s.turns, newTurns...)
		return nil
	}
	return s.store.SaveTurns(s.ConversationID, newTurns)
}
