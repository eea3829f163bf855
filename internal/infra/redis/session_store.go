package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-assessment-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions own a live countdown, so they stay in a local map; Redis holds a
// liveness marker per learner (value is the session id) that expires shortly
// after the session's time limit would have run out.
type SessionStore struct {
	client   *redis.Client
	grace    time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, grace time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		grace:    grace,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(learnerID string, session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.sessions[learnerID]
	s.sessions[learnerID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(learnerID), session.ID(), s.ttl(session)).Err()
	return previous
}

func (s *SessionStore) Get(learnerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[learnerID]
	return session, ok
}

func (s *SessionStore) Delete(learnerID string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[learnerID]
	if !ok || current != session {
		return
	}
	delete(s.sessions, learnerID)
	_ = s.client.Del(context.Background(), s.key(learnerID)).Err()
}

func (s *SessionStore) ttl(session *app.Session) time.Duration {
	if quiz := session.Quiz(); quiz != nil {
		return time.Duration(quiz.TimeLimit)*time.Second + s.grace
	}
	return s.grace
}

func (s *SessionStore) key(learnerID string) string {
	return "quiz:session:" + learnerID
}
