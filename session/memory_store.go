package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded Session in process memory. It stores the encoded
// form so that Load exercises the same decode path as durable stores.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*Session, error) {
	s.mu.Lock()
	data := s.data
	s.mu.Unlock()
	if data == nil {
		return nil, nil
	}
	return Decode(data)
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

// Raw returns the stored blob. Tests use it to plant corrupt values.
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

// SetRaw replaces the stored blob without encoding.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
}

// NopStore is the store for execution contexts without durable client storage.
// Nothing is ever persisted and Load is always absent.
type NopStore struct{}

var _ Store = NopStore{}

func (NopStore) Save(context.Context, *Session) error   { return nil }
func (NopStore) Load(context.Context) (*Session, error) { return nil, nil }
func (NopStore) Clear(context.Context) error            { return nil }
