package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/placeshare/placeshare/internal/model"
)

func seedUser(t *testing.T, s *MemStore, id string) *model.User {
	t.Helper()
	u := &model.User{
		ID:        id,
		Name:      "user " + id,
		Email:     id + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func newPlace(id, creatorID string, createdAt time.Time) *model.Place {
	return &model.Place{
		ID:        id,
		Title:     "title " + id,
		Address:   "somewhere",
		ImagePath: "uploads/images/" + id + ".png",
		CreatorID: creatorID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func createLinked(ctx context.Context, s *MemStore, p *model.Place) error {
	return s.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertPlace(ctx, p); err != nil {
			return err
		}
		return tx.AppendUserPlace(ctx, p.CreatorID, p.ID)
	})
}

func TestMemStore_CreateAndLinkCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")

	if err := createLinked(ctx, s, newPlace("p1", "u1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetPlaceByID(ctx, "p1"); err != nil {
		t.Errorf("GetPlaceByID: %v", err)
	}
	u, _ := s.GetUserByID(ctx, "u1")
	if !u.OwnsPlace("p1") {
		t.Errorf("user places = %v, want p1", u.PlaceIDs)
	}
	if s.CommitCalls != 1 || s.RollbackCalls != 0 {
		t.Errorf("commits=%d rollbacks=%d", s.CommitCalls, s.RollbackCalls)
	}
}

func TestMemStore_RollbackLeavesNoTrace(t *testing.T) {
	t.Parallel()

	errInjected := errors.New("injected")
	tests := []struct {
		name   string
		inject func(s *MemStore)
	}{
		{"insert fails", func(s *MemStore) { s.FailInsertPlace = errInjected }},
		{"append fails", func(s *MemStore) { s.FailAppendUserPlace = errInjected }},
		{"commit fails", func(s *MemStore) { s.FailCommit = errInjected }},
		{"begin fails", func(s *MemStore) { s.FailBegin = errInjected }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := NewMemStore()
			seedUser(t, s, "u1")
			tt.inject(s)

			err := createLinked(ctx, s, newPlace("p1", "u1", time.Now()))
			if !errors.Is(err, errInjected) {
				t.Fatalf("err = %v, want injected", err)
			}
			if s.PlaceCount() != 0 {
				t.Error("place persisted after rollback")
			}
			u, _ := s.GetUserByID(ctx, "u1")
			if len(u.PlaceIDs) != 0 {
				t.Errorf("user places = %v after rollback", u.PlaceIDs)
			}
		})
	}
}

func TestMemStore_CanceledContextRollsBack(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	seedUser(t, s, "u1")

	ctx, cancel := context.WithCancel(context.Background())
	err := s.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertPlace(ctx, newPlace("p1", "u1", time.Now())); err != nil {
			return err
		}
		cancel()
		return tx.AppendUserPlace(ctx, "u1", "p1")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if s.PlaceCount() != 0 {
		t.Error("place persisted after cancellation")
	}
}

func TestMemStore_TxWritesInvisibleUntilCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")

	err := s.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertPlace(ctx, newPlace("p1", "u1", time.Now())); err != nil {
			return err
		}
		if _, err := tx.GetPlaceByID(ctx, "p1"); err != nil {
			t.Errorf("tx cannot read its own write: %v", err)
		}
		if _, err := s.GetPlaceByID(ctx, "p1"); !errors.Is(err, ErrPlaceNotFound) {
			t.Errorf("uncommitted place visible outside tx: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func TestMemStore_InsertRequiresCreator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()

	err := createLinked(ctx, s, newPlace("p1", "ghost", time.Now()))
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestMemStore_DeleteRequiresOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")
	if err := createLinked(ctx, s, newPlace("p1", "u1", time.Now())); err != nil {
		t.Fatal(err)
	}

	err := s.InTx(ctx, func(tx Tx) error { return tx.DeletePlace(ctx, "p1", "u2") })
	if !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("err = %v, want ErrPlaceNotFound", err)
	}
	if s.PlaceCount() != 1 {
		t.Error("place deleted by non-owner")
	}
}

func TestMemStore_ConcurrentAppendsKeepEveryID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := newPlace(fmt.Sprintf("p%02d", i), "u1", time.Now())
			if err := createLinked(ctx, s, p); err != nil {
				t.Errorf("create %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	u, _ := s.GetUserByID(ctx, "u1")
	if len(u.PlaceIDs) != n {
		t.Errorf("user has %d place ids, want %d", len(u.PlaceIDs), n)
	}
	if s.PlaceCount() != n {
		t.Errorf("store has %d places, want %d", s.PlaceCount(), n)
	}
}

func TestMemStore_ListPlacesByCreatorOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		if err := createLinked(ctx, s, newPlace(id, "u1", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	if err := createLinked(ctx, s, newPlace("other", "u2", base)); err != nil {
		t.Fatal(err)
	}

	places, err := s.ListPlacesByCreator(ctx, "u1")
	if err != nil {
		t.Fatalf("ListPlacesByCreator: %v", err)
	}
	var got []string
	for _, p := range places {
		got = append(got, p.ID)
	}
	want := []string{"c", "a", "b"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	empty, err := s.ListPlacesByCreator(ctx, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("ListPlacesByCreator(nobody) = %v, %v; want empty non-nil", empty, err)
	}
}

func TestMemStore_ReadsReturnCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")
	if err := createLinked(ctx, s, newPlace("p1", "u1", time.Now())); err != nil {
		t.Fatal(err)
	}

	p, _ := s.GetPlaceByID(ctx, "p1")
	p.Title = "mutated"
	u, _ := s.GetUserByID(ctx, "u1")
	u.PlaceIDs[0] = "mutated"

	p2, _ := s.GetPlaceByID(ctx, "p1")
	u2, _ := s.GetUserByID(ctx, "u1")
	if p2.Title == "mutated" || u2.PlaceIDs[0] == "mutated" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestMemStore_UpdatePlaceDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")
	orig := newPlace("p1", "u1", time.Now())
	if err := createLinked(ctx, s, orig); err != nil {
		t.Fatal(err)
	}

	upd := orig.Clone()
	upd.Title = "new title"
	upd.Description = "new description"
	upd.Address = "must not change"
	upd.UpdatedAt = orig.UpdatedAt.Add(time.Hour)
	if err := s.UpdatePlaceDetails(ctx, upd); err != nil {
		t.Fatalf("UpdatePlaceDetails: %v", err)
	}

	got, _ := s.GetPlaceByID(ctx, "p1")
	if got.Title != "new title" || got.Description != "new description" {
		t.Errorf("got %q/%q", got.Title, got.Description)
	}
	if got.Address != orig.Address {
		t.Errorf("address changed to %q", got.Address)
	}

	if err := s.UpdatePlaceDetails(ctx, newPlace("missing", "u1", time.Now())); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("update missing = %v, want ErrPlaceNotFound", err)
	}
}

func TestMemStore_CreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemStore()
	seedUser(t, s, "u1")

	err := s.CreateUser(ctx, &model.User{ID: "u2", Email: "U1@example.com"})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
}
