package memstore

import (
	"context"
	"sync"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
)

// SessionStore keeps the active session in memory
type SessionStore struct {
	mu      sync.Mutex
	current *entity.Session
	LoadErr error
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore returns a store with an active session for account, or none if account is nil
func NewSessionStore(account *entity.Account) *SessionStore {
	s := &SessionStore{}
	if account != nil {
		s.current = &entity.Session{AccountID: account.ID, AccountName: account.Name}
	}
	return s
}

func (s *SessionStore) Save(ctx context.Context, sess entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sess
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (entity.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return entity.Session{}, false, s.LoadErr
	}
	if s.current == nil {
		return entity.Session{}, false, nil
	}
	return *s.current, true, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return nil
}
