package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/placeshare/placeshare/internal/model"
)

// MemStore is an in-memory Store. Transactions are serialized and work on a
// copy of the data that replaces the live state only on commit.
//
// The Fail* fields inject errors for tests. They are read at the start of
// each call and must not be changed while calls are in flight.
type MemStore struct {
	writeMu sync.Mutex // serializes transactions and standalone writes
	mu      sync.RWMutex
	places  map[string]*model.Place
	users   map[string]*model.User

	FailBegin           error
	FailCommit          error
	FailInsertPlace     error
	FailDeletePlace     error
	FailAppendUserPlace error
	FailRemoveUserPlace error
	FailUpdatePlace     error
	FailGetUser         error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		places: make(map[string]*model.Place),
		users:  make(map[string]*model.User),
	}
}

// GetPlaceByID retrieves a place by its ID.
func (s *MemStore) GetPlaceByID(_ context.Context, id string) (*model.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookupPlace(s.places, id)
}

// GetUserByID retrieves a user by their ID.
func (s *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailGetUser != nil {
		return nil, s.FailGetUser
	}
	return lookupUser(s.users, id)
}

// ListPlacesByCreator returns the places owned by userID in creation order.
func (s *MemStore) ListPlacesByCreator(_ context.Context, userID string) ([]*model.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	places := []*model.Place{}
	for _, p := range s.places {
		if p.CreatorID == userID {
			places = append(places, p.Clone())
		}
	}
	sort.Slice(places, func(i, j int) bool {
		if !places[i].CreatedAt.Equal(places[j].CreatedAt) {
			return places[i].CreatedAt.Before(places[j].CreatedAt)
		}
		return places[i].ID < places[j].ID
	})
	return places, nil
}

// ListUsers returns all users without credentials, oldest first.
func (s *MemStore) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		c := u.Clone()
		c.PasswordHash = ""
		users = append(users, c)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// CreateUser inserts a new user.
func (s *MemStore) CreateUser(_ context.Context, user *model.User) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailExists
		}
	}
	c := user.Clone()
	if c.PlaceIDs == nil {
		c.PlaceIDs = []string{}
	}
	s.users[user.ID] = c
	return nil
}

// UpdatePlaceDetails writes the title, description and updated_at of a place.
func (s *MemStore) UpdatePlaceDetails(_ context.Context, place *model.Place) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpdatePlace != nil {
		return s.FailUpdatePlace
	}
	current, ok := s.places[place.ID]
	if !ok {
		return ErrPlaceNotFound
	}
	updated := current.Clone()
	updated.Title = place.Title
	updated.Description = place.Description
	updated.UpdatedAt = place.UpdatedAt
	s.places[place.ID] = updated
	return nil
}

// InTx runs fn against a private copy of the data and publishes the copy
// only if fn succeeds and ctx is still live.
func (s *MemStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.BeginCalls++
	if s.FailBegin != nil {
		return s.FailBegin
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	tx := &memTx{
		store:  s,
		places: make(map[string]*model.Place, len(s.places)),
		users:  make(map[string]*model.User, len(s.users)),
	}
	for k, v := range s.places {
		tx.places[k] = v
	}
	for k, v := range s.users {
		tx.users[k] = v
	}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		s.RollbackCalls++
		return err
	}
	if err := ctx.Err(); err != nil {
		s.RollbackCalls++
		return err
	}
	if s.FailCommit != nil {
		s.RollbackCalls++
		return s.FailCommit
	}

	s.mu.Lock()
	s.places = tx.places
	s.users = tx.users
	s.mu.Unlock()
	s.CommitCalls++
	return nil
}

// Ping always succeeds.
func (s *MemStore) Ping(context.Context) error {
	return nil
}

// PlaceCount returns the number of stored places.
func (s *MemStore) PlaceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.places)
}

// memTx holds a transaction's working copy. Entities shared with the live
// state are cloned before they are modified.
type memTx struct {
	store  *MemStore
	places map[string]*model.Place
	users  map[string]*model.User
}

func (t *memTx) GetPlaceByID(_ context.Context, id string) (*model.Place, error) {
	return lookupPlace(t.places, id)
}

func (t *memTx) GetUserByID(_ context.Context, id string) (*model.User, error) {
	return lookupUser(t.users, id)
}

func (t *memTx) InsertPlace(_ context.Context, place *model.Place) error {
	if err := t.store.FailInsertPlace; err != nil {
		return err
	}
	if _, ok := t.users[place.CreatorID]; !ok {
		return ErrUserNotFound
	}
	if _, ok := t.places[place.ID]; ok {
		return fmt.Errorf("place %s already exists", place.ID)
	}
	t.places[place.ID] = place.Clone()
	return nil
}

func (t *memTx) DeletePlace(_ context.Context, id, creatorID string) error {
	if err := t.store.FailDeletePlace; err != nil {
		return err
	}
	p, ok := t.places[id]
	if !ok || p.CreatorID != creatorID {
		return ErrPlaceNotFound
	}
	delete(t.places, id)
	return nil
}

func (t *memTx) AppendUserPlace(_ context.Context, userID, placeID string) error {
	if err := t.store.FailAppendUserPlace; err != nil {
		return err
	}
	u, ok := t.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	c := u.Clone()
	c.AddPlace(placeID)
	t.users[userID] = c
	return nil
}

func (t *memTx) RemoveUserPlace(_ context.Context, userID, placeID string) error {
	if err := t.store.FailRemoveUserPlace; err != nil {
		return err
	}
	u, ok := t.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	c := u.Clone()
	c.RemovePlace(placeID)
	t.users[userID] = c
	return nil
}

func lookupPlace(places map[string]*model.Place, id string) (*model.Place, error) {
	p, ok := places[id]
	if !ok {
		return nil, ErrPlaceNotFound
	}
	return p.Clone(), nil
}

func lookupUser(users map[string]*model.User, id string) (*model.User, error) {
	u, ok := users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}
