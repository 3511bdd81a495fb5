package config

import (
	"fmt"
	"strconv"
	"sync"
)

// Setting keys shared with the settings collaborator.
const (
	KeySharedSecret = "shared_secret"
	KeyHost         = "piled_ip"
	KeyPort         = "piled_port"
)

// Store is the key-value capability the client reads its settings
// through.  How values are persisted is up to the implementation.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStore is a process-local Store.  Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	vals map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string]string)}
}

// Get returns the value for key and whether it is set.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vals[key]
	return v, ok
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	s.vals[key] = value
	s.mu.Unlock()
	return nil
}

// SeedDefaults applies first-run values for the controller endpoint.
// The shared secret is never defaulted: a missing secret must stay
// missing so commands are refused instead of signed with a guess.
func SeedDefaults(s Store) error {
	if _, ok := s.Get(KeyHost); !ok {
		if err := s.Set(KeyHost, DefaultHost); err != nil {
			return err
		}
	}
	if _, ok := s.Get(KeyPort); !ok {
		if err := s.Set(KeyPort, strconv.Itoa(DefaultPort)); err != nil {
			return err
		}
	}
	return nil
}

// SharedSecret reads the secret from s; "" means not configured.
func SharedSecret(s Store) string {
	if s == nil {
		return ""
	}
	v, _ := s.Get(KeySharedSecret)
	return v
}

// StoreFromConfig builds a MemoryStore holding cfg's endpoint and
// secret, with first-run defaults for anything unset.
func StoreFromConfig(cfg *Config) (*MemoryStore, error) {
	s := NewMemoryStore()
	if cfg.Host != "" {
		s.Set(KeyHost, cfg.Host) //nolint:errcheck // MemoryStore.Set never fails
	}
	if cfg.Port != 0 {
		s.Set(KeyPort, strconv.Itoa(cfg.Port)) //nolint:errcheck
	}
	if cfg.Secret != "" {
		s.Set(KeySharedSecret, cfg.Secret) //nolint:errcheck
	}
	if err := SeedDefaults(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Endpoint reads the controller address from s.
func Endpoint(s Store) (host string, port int, err error) {
	host, _ = s.Get(KeyHost)
	if host == "" {
		return "", 0, fmt.Errorf("%s is not set", KeyHost)
	}
	p, _ := s.Get(KeyPort)
	port, err = strconv.Atoi(p)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%s %q is not a valid port", KeyPort, p)
	}
	return host, port, nil
}
