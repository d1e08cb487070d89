// Package repository provides database access layer.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/placeshare/placeshare/internal/model"
)

// Reader fetches places and users.
type Reader interface {
	GetPlaceByID(ctx context.Context, id string) (*model.Place, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Tx is the set of operations available inside a transaction. Writes made
// through a Tx become visible only if the enclosing InTx callback returns nil.
type Tx interface {
	Reader
	InsertPlace(ctx context.Context, place *model.Place) error
	DeletePlace(ctx context.Context, id, creatorID string) error
	AppendUserPlace(ctx context.Context, userID, placeID string) error
	RemoveUserPlace(ctx context.Context, userID, placeID string) error
}

// Store is the persistence capability used by the service layer.
type Store interface {
	Reader
	ListPlacesByCreator(ctx context.Context, userID string) ([]*model.Place, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdatePlaceDetails(ctx context.Context, place *model.Place) error

	// InTx runs fn in a transaction. The transaction commits if fn returns
	// nil and rolls back otherwise, including when ctx is canceled first.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
}

// querier is satisfied by both the pool and a pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// InTx runs fn inside a read committed transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(&pgTx{q: tx})
	})
	return classify(err)
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// pgTx implements Tx on top of a pgx transaction.
type pgTx struct {
	q querier
}

func (t *pgTx) GetPlaceByID(ctx context.Context, id string) (*model.Place, error) {
	return getPlace(ctx, t.q, id)
}

func (t *pgTx) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return getUser(ctx, t.q, id)
}

func (t *pgTx) InsertPlace(ctx context.Context, place *model.Place) error {
	return insertPlace(ctx, t.q, place)
}

func (t *pgTx) DeletePlace(ctx context.Context, id, creatorID string) error {
	return deletePlace(ctx, t.q, id, creatorID)
}

func (t *pgTx) AppendUserPlace(ctx context.Context, userID, placeID string) error {
	return appendUserPlace(ctx, t.q, userID, placeID)
}

func (t *pgTx) RemoveUserPlace(ctx context.Context, userID, placeID string) error {
	return removeUserPlace(ctx, t.q, userID, placeID)
}
