// Package keyring supplies connection secrets at connect time. Saved
// connection configurations never carry passwords; the connection manager
// asks a Store for the secret keyed by the configuration ID just before
// dialing.
package keyring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrSecretNotFound is returned when no secret exists for the requested key.
var ErrSecretNotFound = errors.New("secret not found")

// Store resolves and persists connection secrets.
type Store interface {
	// Get returns the secret for the given connection ID.
	Get(connectionID string) (string, error)
	// Set stores the secret for the given connection ID.
	Set(connectionID string, secret string) error
	// Delete removes the secret for the given connection ID.
	Delete(connectionID string) error
}

// SystemStore keeps secrets in the operating system keyring.
type SystemStore struct {
	// Service is the keyring service name entries are filed under.
	Service string
}

// NewSystemStore creates a Store backed by the OS keyring.
func NewSystemStore(service string) *SystemStore {
	return &SystemStore{Service: service}
}

func (s *SystemStore) Get(connectionID string) (string, error) {
	secret, err := keyring.Get(s.Service, connectionID)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("reading secret for %s: %w", connectionID, err)
	}
	return secret, nil
}

func (s *SystemStore) Set(connectionID string, secret string) error {
	if err := keyring.Set(s.Service, connectionID, secret); err != nil {
		return fmt.Errorf("storing secret for %s: %w", connectionID, err)
	}
	return nil
}

func (s *SystemStore) Delete(connectionID string) error {
	if err := keyring.Delete(s.Service, connectionID); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrSecretNotFound
		}
		return fmt.Errorf("deleting secret for %s: %w", connectionID, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and headless environments
// without a system keyring.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func (s *MemoryStore) Get(connectionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[connectionID]
	if !ok {
		return "", ErrSecretNotFound
	}
	return secret, nil
}

func (s *MemoryStore) Set(connectionID string, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[connectionID] = secret
	return nil
}

func (s *MemoryStore) Delete(connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secrets[connectionID]; !ok {
		return ErrSecretNotFound
	}
	delete(s.secrets, connectionID)
	return nil
}
