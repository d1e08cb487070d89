package service

import "github.com/placeshare/placeshare/internal/model"

// CheckOwner allows a mutation only when principalID is byte-for-byte equal
// to the place's creator. Empty identifiers and a nil place are refused.
func CheckOwner(principalID string, place *model.Place) error {
	if place == nil || principalID == "" || place.CreatorID == "" || principalID != place.CreatorID {
		return &Error{Kind: KindForbidden, Op: "authorize"}
	}
	return nil
}
