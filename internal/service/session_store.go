package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore asocia tokens de sesión con el nombre del usuario logueado.
// Un TTL de cero significa sin expiración.
type SessionStore interface {
	Put(ctx context.Context, token, nome string) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

var ErrSessionNotFound = errors.New("session not found")

type memorySessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memorySession
}

type memorySession struct {
	nome      string
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		ttl:   ttl,
		items: make(map[string]memorySession),
	}
}

func (s *memorySessionStore) Put(_ context.Context, token, nome string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := memorySession{nome: nome}
	if s.ttl > 0 {
		sess.expiresAt = time.Now().UTC().Add(s.ttl)
	}
	s.items[token] = sess
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	if !sess.expiresAt.IsZero() && time.Now().UTC().After(sess.expiresAt) {
		delete(s.items, token)
		return "", ErrSessionNotFound
	}
	return sess.nome, nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "chat:session:",
		ttl:    ttl,
	}
}

func (s *redisSessionStore) Put(ctx context.Context, token, nome string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+token, nome, s.ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	nome, err := s.client.Get(ctx, s.prefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return nome, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+token).Err()
}
