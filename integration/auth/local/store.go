package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrymomot/launchpad/core/db"
)

var (
	// ErrUserNotFound is returned by a UserStore when no account matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when a sign-up collides with an existing
	// account.
	ErrEmailTaken = errors.New("email is already registered")
)

// StoredUser is an account record as persisted by a UserStore. The
// password hash never leaves the flow layer.
type StoredUser struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	Image        *string
}

// UserStore persists credential-flow accounts.
type UserStore interface {
	Create(ctx context.Context, user StoredUser) error
	ByEmail(ctx context.Context, email string) (StoredUser, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
}

// QuerierStore implements UserStore on top of the generic table access
// layer, so the credential flow works against whichever database backend
// the deployment selected.
type QuerierStore struct {
	querier db.Querier
	table   string
}

var _ UserStore = (*QuerierStore)(nil)

// NewQuerierStore stores accounts in the "users" table.
func NewQuerierStore(querier db.Querier) *QuerierStore {
	return &QuerierStore{querier: querier, table: "users"}
}

func (s *QuerierStore) Create(ctx context.Context, user StoredUser) error {
	existing, err := s.querier.Select(ctx, s.table, db.Eq("email", user.Email))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrEmailTaken
	}

	_, err = s.querier.Insert(ctx, s.table, db.Row{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"name":          user.Name,
		"image":         user.Image,
	})
	return err
}

func (s *QuerierStore) ByEmail(ctx context.Context, email string) (StoredUser, error) {
	rows, err := s.querier.Select(ctx, s.table, db.Eq("email", email))
	if err != nil {
		return StoredUser{}, err
	}
	if len(rows) == 0 {
		return StoredUser{}, ErrUserNotFound
	}
	return userFromRow(rows[0]), nil
}

func (s *QuerierStore) SetPassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.querier.Update(ctx, s.table, db.Eq("id", id), db.Row{"password_hash": passwordHash})
	if errors.Is(err, db.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func userFromRow(row db.Row) StoredUser {
	return StoredUser{
		ID:           stringColumn(row, "id"),
		Email:        stringColumn(row, "email"),
		PasswordHash: stringColumn(row, "password_hash"),
		Name:         optionalColumn(row, "name"),
		Image:        optionalColumn(row, "image"),
	}
}

func stringColumn(row db.Row, column string) string {
	if v, ok := row[column].(string); ok {
		return v
	}
	if v := row[column]; v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func optionalColumn(row db.Row, column string) *string {
	s := stringColumn(row, column)
	if s == "" {
		return nil
	}
	return &s
}

// MemoryStore keeps accounts in-process. Intended for tests and local
// development without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]StoredUser // keyed by email
}

var _ UserStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]StoredUser)}
}

func (s *MemoryStore) Create(_ context.Context, user StoredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return ErrEmailTaken
	}
	s.users[user.Email] = user
	return nil
}

func (s *MemoryStore) ByEmail(_ context.Context, email string) (StoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return StoredUser{}, ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryStore) SetPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, user := range s.users {
		if user.ID == id {
			user.PasswordHash = passwordHash
			s.users[email] = user
			return nil
		}
	}
	return ErrUserNotFound
}
