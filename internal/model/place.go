// Package model defines domain entities for the application.
package model

import "time"

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a geocoded point of interest owned by a User.
// Address, Location, ImagePath and CreatorID never change after creation.
type Place struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Location    Coordinates `json:"location"`
	ImagePath   string      `json:"image"`
	CreatorID   string      `json:"creator"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Clone returns a copy of the place.
func (p *Place) Clone() *Place {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
