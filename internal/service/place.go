// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/placeshare/placeshare/internal/asset"
	"github.com/placeshare/placeshare/internal/geocode"
	"github.com/placeshare/placeshare/internal/metrics"
	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/repository"
)

// Assets is the asset lifecycle used by PlaceService. *asset.Manager
// implements it.
type Assets interface {
	CommittedPath(ref asset.StagedRef) string
	Commit(ctx context.Context, ref asset.StagedRef) (string, error)
	Discard(ctx context.Context, ref string)
}

// PlaceService runs the place lifecycle: geocoding, the linked
// place/user writes and the image asset commit or discard.
type PlaceService struct {
	store    repository.Store
	geocoder geocode.Resolver
	assets   Assets
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(
	store repository.Store,
	geocoder geocode.Resolver,
	assets Assets,
	clock clockwork.Clock,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *PlaceService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PlaceService{
		store:    store,
		geocoder: geocoder,
		assets:   assets,
		clock:    clock,
		logger:   logger.With("component", "service.place"),
		metrics:  recorder,
	}
}

// CreatePlaceInput defines input for creating a place.
type CreatePlaceInput struct {
	PrincipalID string
	Title       string
	Description string
	Address     string
	Image       asset.StagedRef
}

// CreatePlace geocodes the address, stores the place and links it to its
// owner in one transaction, then commits the staged image. On any failure
// before the transaction commits the staged image is discarded.
func (s *PlaceService) CreatePlace(ctx context.Context, input CreatePlaceInput) (*model.Place, error) {
	const op = "create place"

	if input.Image.IsZero() {
		return nil, s.fail(op, &Error{Kind: KindInvalidInput, Op: op, Msg: "An image is required."})
	}
	if input.PrincipalID == "" || strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Address) == "" {
		s.discard(ctx, input.Image.String())
		return nil, s.fail(op, &Error{Kind: KindInvalidInput, Op: op})
	}

	coords, err := s.geocoder.Resolve(ctx, input.Address)
	if err != nil {
		s.discard(ctx, input.Image.String())
		kind := KindGeocodingUnavailable
		if errors.Is(err, geocode.ErrUnresolvableAddress) {
			kind = KindUnresolvableAddress
		}
		return nil, s.fail(op, &Error{Kind: kind, Op: op, Err: err})
	}

	owner, err := s.store.GetUserByID(ctx, input.PrincipalID)
	if err != nil {
		s.discard(ctx, input.Image.String())
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, s.fail(op, &Error{Kind: KindOwnerNotFound, Op: op, Err: err})
		}
		return nil, s.fail(op, &Error{Kind: KindCreateFailed, Op: op, Err: err})
	}

	now := s.now()
	place := &model.Place{
		ID:          newID(now),
		Title:       input.Title,
		Description: input.Description,
		Address:     input.Address,
		Location:    coords,
		ImagePath:   s.assets.CommittedPath(input.Image),
		CreatorID:   owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.InsertPlace(ctx, place); err != nil {
			return lostRace(err)
		}
		return lostRace(tx.AppendUserPlace(ctx, owner.ID, place.ID))
	})
	if err != nil {
		s.discard(ctx, input.Image.String())
		return nil, s.fail(op, &Error{Kind: KindCreateFailed, Op: op, Err: err})
	}

	// The image was published at its permanent path before the transaction,
	// so a failed confirmation here leaves nothing to undo.
	if _, err := s.assets.Commit(context.WithoutCancel(ctx), input.Image); err != nil {
		s.metrics.IncAssetCleanupFailed("commit")
		s.logger.ErrorContext(ctx, "failed to commit image for stored place",
			"place_id", place.ID,
			"image", place.ImagePath,
			"error", err,
		)
	}

	s.metrics.IncPlaceCreated()
	s.logger.InfoContext(ctx, "place created", "place_id", place.ID, "creator_id", owner.ID)
	return place, nil
}

// GetPlace retrieves a place by ID.
func (s *PlaceService) GetPlace(ctx context.Context, id string) (*model.Place, error) {
	const op = "get place"

	place, err := s.store.GetPlaceByID(ctx, id)
	if err != nil {
		return nil, s.fail(op, readError(op, err))
	}
	return place, nil
}

// ListPlacesByUser returns a user's places in creation order. A known user
// with no places gets an empty list, not NotFound; only an unknown user is
// NotFound.
func (s *PlaceService) ListPlacesByUser(ctx context.Context, userID string) ([]*model.Place, error) {
	const op = "list places"

	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, s.fail(op, &Error{Kind: KindNotFound, Op: op, Msg: "Could not find user for the provided id.", Err: err})
		}
		return nil, s.fail(op, &Error{Kind: KindUnavailable, Op: op, Err: err})
	}

	places, err := s.store.ListPlacesByCreator(ctx, userID)
	if err != nil {
		return nil, s.fail(op, &Error{Kind: KindUnavailable, Op: op, Err: err})
	}
	return places, nil
}

// UpdatePlaceInput defines input for updating a place. Only the title and
// description of a place can change.
type UpdatePlaceInput struct {
	PrincipalID string
	PlaceID     string
	Title       string
	Description string
}

// UpdatePlace changes a place's title and description on behalf of its creator.
func (s *PlaceService) UpdatePlace(ctx context.Context, input UpdatePlaceInput) (*model.Place, error) {
	const op = "update place"

	if strings.TrimSpace(input.Title) == "" {
		return nil, s.fail(op, &Error{Kind: KindInvalidInput, Op: op})
	}

	place, err := s.store.GetPlaceByID(ctx, input.PlaceID)
	if err != nil {
		return nil, s.fail(op, readError(op, err))
	}
	if err := CheckOwner(input.PrincipalID, place); err != nil {
		return nil, s.fail(op, &Error{Kind: KindForbidden, Op: op, Msg: "You are not allowed to edit this place."})
	}

	place.Title = input.Title
	place.Description = input.Description
	place.UpdatedAt = s.now()

	if err := s.store.UpdatePlaceDetails(ctx, place); err != nil {
		return nil, s.fail(op, readError(op, err))
	}

	s.metrics.IncPlaceUpdated()
	return place, nil
}

// DeletePlaceInput defines input for deleting a place.
type DeletePlaceInput struct {
	PrincipalID string
	PlaceID     string
}

// DeletePlace removes a place and unlinks it from its owner in one
// transaction, then discards its image. A failed image discard does not fail
// the operation.
func (s *PlaceService) DeletePlace(ctx context.Context, input DeletePlaceInput) error {
	const op = "delete place"

	place, err := s.store.GetPlaceByID(ctx, input.PlaceID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return s.fail(op, &Error{Kind: KindNotFound, Op: op, Err: err})
		}
		return s.fail(op, &Error{Kind: KindDeleteFailed, Op: op, Err: err})
	}
	owner, err := s.store.GetUserByID(ctx, place.CreatorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return s.fail(op, &Error{Kind: KindNotFound, Op: op, Msg: "Could not find owner of this place.", Err: err})
		}
		return s.fail(op, &Error{Kind: KindDeleteFailed, Op: op, Err: err})
	}
	if err := CheckOwner(input.PrincipalID, place); err != nil {
		return s.fail(op, &Error{Kind: KindForbidden, Op: op, Msg: "You are not allowed to delete this place."})
	}

	err = s.store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.DeletePlace(ctx, place.ID, owner.ID); err != nil {
			return lostRace(err)
		}
		return lostRace(tx.RemoveUserPlace(ctx, owner.ID, place.ID))
	})
	if err != nil {
		return s.fail(op, &Error{Kind: KindDeleteFailed, Op: op, Err: err})
	}

	s.discard(ctx, place.ImagePath)

	s.metrics.IncPlaceDeleted()
	s.logger.InfoContext(ctx, "place deleted", "place_id", place.ID, "creator_id", owner.ID)
	return nil
}

// discard releases an asset without letting caller cancellation stop it.
func (s *PlaceService) discard(ctx context.Context, ref string) {
	s.assets.Discard(context.WithoutCancel(ctx), ref)
}

// fail records a failed operation and returns e.
func (s *PlaceService) fail(op string, e *Error) *Error {
	s.metrics.IncPlaceOperationFailed(strings.Fields(op)[0], string(e.Kind))
	return e
}

func (s *PlaceService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// readError classifies a failed read or single-row write.
func readError(op string, err error) *Error {
	if errors.Is(err, repository.ErrPlaceNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	}
	return &Error{Kind: KindUnavailable, Op: op, Err: err}
}

// lostRace marks rows that vanished inside a transaction as a conflict with
// a concurrent writer.
func lostRace(err error) error {
	if errors.Is(err, repository.ErrPlaceNotFound) || errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("%w: %w", repository.ErrConflict, err)
	}
	return err
}

func newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}
