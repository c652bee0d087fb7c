package helpers

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/localnerve/conexo-admin/internal/identity"
	"github.com/localnerve/conexo-admin/internal/storage"
)

// FakeIdentity is an in-memory identity provider
type FakeIdentity struct {
	mu        sync.Mutex
	Sessions  map[string]string
	Profiles  map[string]*identity.Profile
	GetErr    error
	DeleteErr error
	Deleted   []string
	Lookups   int
}

// NewFakeIdentity creates an empty provider
func NewFakeIdentity() *FakeIdentity {
	return &FakeIdentity{
		Sessions: map[string]string{},
		Profiles: map[string]*identity.Profile{},
	}
}

// AddSession makes cookie a valid session for principal
func (f *FakeIdentity) AddSession(cookie, principal string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sessions[cookie] = principal
}

// SetProfile stores the provider profile of principal
func (f *FakeIdentity) SetProfile(principal, email, first, last string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Profiles[principal] = &identity.Profile{PrincipalID: principal, Email: email, FirstName: first, LastName: last}
}

func (f *FakeIdentity) ValidateSession(_ context.Context, cookie string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	principal, ok := f.Sessions[cookie]
	if !ok {
		return nil, identity.ErrInvalidSession
	}
	email := ""
	if p := f.Profiles[principal]; p != nil {
		email = p.Email
	}
	return &identity.Session{PrincipalID: principal, Email: email}, nil
}

func (f *FakeIdentity) GetProfile(_ context.Context, principal string) (*identity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups++
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	p, ok := f.Profiles[principal]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *FakeIdentity) DeleteUser(_ context.Context, principal string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, principal)
	delete(f.Profiles, principal)
	return nil
}

// DeleteCalls is the number of successful provider deletions
func (f *FakeIdentity) DeleteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Deleted)
}

// FakeStore is an in-memory object store
type FakeStore struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Types    map[string]string
	PutErr   error
	FailKeys map[string]error
	Deleted  []string
}

// NewFakeStore creates an empty store
func NewFakeStore() *FakeStore {
	return &FakeStore{
		Objects:  map[string][]byte{},
		Types:    map[string]string{},
		FailKeys: map[string]error{},
	}
}

func (f *FakeStore) Put(_ context.Context, key, contentType string, body io.Reader) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = data
	f.Types[key] = contentType
	return nil
}

func (f *FakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FailKeys[key]; err != nil {
		return err
	}
	if _, ok := f.Objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.Objects, key)
	f.Deleted = append(f.Deleted, key)
	return nil
}

// Seed stores an object directly
func (f *FakeStore) Seed(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = bytes.Clone(data)
}

// Has reports whether key is stored
func (f *FakeStore) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Objects[key]
	return ok
}

// Message is one published event
type Message struct {
	Key  string
	Data any
}

// FakePublisher records published events
type FakePublisher struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (f *FakePublisher) Publish(_ context.Context, key string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Messages = append(f.Messages, Message{Key: key, Data: data})
	return nil
}

// Keys lists the routing keys published so far
func (f *FakePublisher) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.Messages))
	for _, m := range f.Messages {
		keys = append(keys, m.Key)
	}
	return keys
}
