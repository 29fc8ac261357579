package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/ponyo877/pushy/server/domain"
	"github.com/ponyo877/pushy/server/usecase"
)

const driverName = "sqlite3_pushy"

var registerDriver sync.Once

const schema = `
	CREATE TABLE IF NOT EXISTS channel (
		id            INTEGER PRIMARY KEY,
		name          TEXT NOT NULL,
		password_hash BLOB NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS subscriber (
		publisher_id  INTEGER NOT NULL,
		subscriber_id INTEGER NOT NULL,
		subscribed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (publisher_id, subscriber_id),
		FOREIGN KEY (publisher_id) REFERENCES channel (id),
		FOREIGN KEY (subscriber_id) REFERENCES channel (id)
	);
`

// Open opens the sqlite database at path through a driver that enforces
// foreign keys on every pooled connection.
func Open(path string) (*sql.DB, error) {
	registerDriver.Do(func() {
		sql.Register(driverName,
			&sqlite3.SQLiteDriver{
				ConnectHook: func(conn *sqlite3.SQLiteConn) error {
					_, err := conn.Exec("PRAGMA foreign_keys = ON", nil)
					return err
				},
			})
	})
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect db %s: %w", path, err)
	}
	return db, nil
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the channel and subscriber tables when absent.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	})
}

func (r *Repository) CreateChannel(ctx context.Context, channel domain.Channel) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := "INSERT INTO channel (id, name, password_hash, created_at) VALUES (?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, int64(channel.ID), channel.Name, channel.PasswordHash[:], channel.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert channel %d: %w", channel.ID, classify(err))
		}
		return nil
	})
}

func (r *Repository) GetChannel(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	var channel domain.Channel
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := "SELECT id, name, password_hash, created_at FROM channel WHERE id = ?"
		var rowID int64
		var name string
		var hash []byte
		var createdAt time.Time
		if err := tx.QueryRowContext(ctx, query, int64(id)).Scan(&rowID, &name, &hash, &createdAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("channel %d: %w", id, usecase.ErrNotFound)
			}
			return fmt.Errorf("error querying channel %d: %w", id, classify(err))
		}
		passwordHash, ok := domain.PasswordHashFromBytes(hash)
		if !ok {
			return fmt.Errorf("channel %d has a %d-byte password hash: %w", id, len(hash), usecase.ErrStore)
		}
		channel = domain.Channel{
			ID:           domain.ChannelID(rowID),
			Name:         name,
			PasswordHash: passwordHash,
			CreatedAt:    createdAt,
		}
		return nil
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

func (r *Repository) CreateSubscription(ctx context.Context, subscription domain.Subscription) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := "INSERT INTO subscriber (publisher_id, subscriber_id, subscribed_at) VALUES (?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, int64(subscription.PublisherID), int64(subscription.SubscriberID), subscription.SubscribedAt); err != nil {
			return fmt.Errorf("failed to insert subscription %d -> %d: %w", subscription.SubscriberID, subscription.PublisherID, classify(err))
		}
		return nil
	})
}

func (r *Repository) ListSubscriberIDs(ctx context.Context, publisherID domain.ChannelID) ([]domain.ChannelID, error) {
	var ids []domain.ChannelID
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := "SELECT subscriber_id FROM subscriber WHERE publisher_id = ? ORDER BY subscriber_id"
		rows, err := tx.QueryContext(ctx, query, int64(publisherID))
		if err != nil {
			return fmt.Errorf("failed to query subscribers of %d: %w", publisherID, classify(err))
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan subscriber id: %w", classify(err))
			}
			ids = append(ids, domain.ChannelID(id))
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating over subscribers of %d: %w", publisherID, classify(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// withTx runs fn in its own transaction, committing on success and rolling
// back on any error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	return nil
}

// classify maps constraint violations to usecase sentinels and marks
// everything else as a store fault.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %v", usecase.ErrAlreadyExists, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", usecase.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %v", usecase.ErrStore, err)
}
