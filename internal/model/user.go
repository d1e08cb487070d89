// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// User owns zero or more places. PlaceIDs is kept in creation order
// and never holds duplicates.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ImagePath    string    `json:"image"`
	PlaceIDs     []string  `json:"places"`
	CreatedAt    time.Time `json:"created_at"`
}

// OwnsPlace reports whether placeID is in the user's place list.
func (u *User) OwnsPlace(placeID string) bool {
	return slices.Contains(u.PlaceIDs, placeID)
}

// AddPlace appends placeID unless it is already present.
func (u *User) AddPlace(placeID string) {
	if u.OwnsPlace(placeID) {
		return
	}
	u.PlaceIDs = append(u.PlaceIDs, placeID)
}

// RemovePlace drops placeID, keeping the order of the remaining ids.
func (u *User) RemovePlace(placeID string) {
	u.PlaceIDs = slices.DeleteFunc(u.PlaceIDs, func(id string) bool {
		return id == placeID
	})
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PlaceIDs = slices.Clone(u.PlaceIDs)
	return &c
}
