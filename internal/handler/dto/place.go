// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/placeshare/placeshare/internal/model"
)

// UpdatePlaceRequest represents the request body for updating a place.
type UpdatePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PlaceResponse represents a place in API responses.
type PlaceResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Address     string            `json:"address"`
	Location    model.Coordinates `json:"location"`
	Image       string            `json:"image"`
	Creator     string            `json:"creator"`
}

// PlaceEnvelope wraps a single place.
type PlaceEnvelope struct {
	Place *PlaceResponse `json:"place"`
}

// PlaceListEnvelope wraps a list of places.
type PlaceListEnvelope struct {
	Places []PlaceResponse `json:"places"`
}

// UserResponse represents a user in API responses. Credentials are never
// part of it.
type UserResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Image      string   `json:"image,omitempty"`
	Places     []string `json:"places"`
	PlaceCount int      `json:"placeCount"`
}

// UserListEnvelope wraps a list of users.
type UserListEnvelope struct {
	Users []UserResponse `json:"users"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ToPlaceResponse converts a Place model to PlaceResponse DTO.
func ToPlaceResponse(p *model.Place) *PlaceResponse {
	return &PlaceResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location:    p.Location,
		Image:       p.ImagePath,
		Creator:     p.CreatorID,
	}
}

// ToPlaceListEnvelope converts places to a list envelope. The list is never
// null in JSON.
func ToPlaceListEnvelope(places []*model.Place) *PlaceListEnvelope {
	out := make([]PlaceResponse, len(places))
	for i, p := range places {
		out[i] = *ToPlaceResponse(p)
	}
	return &PlaceListEnvelope{Places: out}
}

// ToUserListEnvelope converts users to a list envelope.
func ToUserListEnvelope(users []*model.User) *UserListEnvelope {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		places := u.PlaceIDs
		if places == nil {
			places = []string{}
		}
		out[i] = UserResponse{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Image:      u.ImagePath,
			Places:     places,
			PlaceCount: len(places),
		}
	}
	return &UserListEnvelope{Users: out}
}
