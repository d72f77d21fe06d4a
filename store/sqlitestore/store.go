// Package sqlitestore implements store.Store on an embedded SQLite file,
// keeping each document as JSON text. It backs local development and tests.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wanderventure/wanderventure-server/store"
)

const (
	roomsTable    = "rooms"
	bookingsTable = "my_rooms"
	reviewsTable  = "reviews"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS my_rooms (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS my_rooms_email ON my_rooms (json_extract(doc, '$.email'));
CREATE TABLE IF NOT EXISTS reviews (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Store persists documents in SQLite
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the SQLite file at path and applies the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// single writer keeps SQLITE_BUSY out of concurrent requests
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InsertRoom adds a room to the catalogue. The API never writes rooms; this
// is for seeding a local database.
func (s *Store) InsertRoom(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	return s.insert(ctx, roomsTable, doc)
}

func (s *Store) ListRooms(ctx context.Context, search string) ([]store.Document, error) {
	docs, err := s.query(ctx, `SELECT id, doc FROM rooms ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	match := store.RoomMatcher(search)
	out := make([]store.Document, 0, len(docs))
	for _, d := range docs {
		if match(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (store.Document, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	docs, err := s.query(ctx, `SELECT id, doc FROM rooms WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

func (s *Store) ListBookings(ctx context.Context, email string) ([]store.Document, error) {
	if email == "" {
		return s.query(ctx, `SELECT id, doc FROM my_rooms ORDER BY created_at, id`)
	}
	return s.query(ctx,
		`SELECT id, doc FROM my_rooms WHERE json_extract(doc, '$.email') = ? ORDER BY created_at, id`,
		email,
	)
}

func (s *Store) CreateBooking(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	return s.insert(ctx, bookingsTable, doc)
}

func (s *Store) UpdateBookingDate(ctx context.Context, id string, bookingDate any) (store.UpdateResult, error) {
	if err := validateID(id); err != nil {
		return store.UpdateResult{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM my_rooms WHERE id = ?`, id).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		body, err := encode(store.Document{store.FieldBookingDate: bookingDate})
		if err != nil {
			return store.UpdateResult{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO my_rooms (id, doc, created_at) VALUES (?, ?, ?)`,
			id, body, s.now().UTC().UnixMilli(),
		); err != nil {
			return store.UpdateResult{}, fmt.Errorf("upsert booking %s: %w", id, err)
		}
		if err := tx.Commit(); err != nil {
			return store.UpdateResult{}, fmt.Errorf("commit: %w", err)
		}
		return store.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	case err != nil:
		return store.UpdateResult{}, fmt.Errorf("load booking %s: %w", id, err)
	}

	doc, err := decode(id, raw)
	if err != nil {
		return store.UpdateResult{}, err
	}
	before, _ := json.Marshal(doc[store.FieldBookingDate])
	after, _ := json.Marshal(bookingDate)
	if string(before) == string(after) {
		return store.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}

	doc[store.FieldBookingDate] = bookingDate
	body, err := encode(store.WithoutID(doc))
	if err != nil {
		return store.UpdateResult{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE my_rooms SET doc = ? WHERE id = ?`, body, id); err != nil {
		return store.UpdateResult{}, fmt.Errorf("update booking %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return store.UpdateResult{}, fmt.Errorf("commit: %w", err)
	}
	return store.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id string) (store.DeleteResult, error) {
	if err := validateID(id); err != nil {
		return store.DeleteResult{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM my_rooms WHERE id = ?`, id)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("delete booking %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("rows affected: %w", err)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (s *Store) ListReviews(ctx context.Context) ([]store.Document, error) {
	return s.query(ctx,
		`SELECT id, doc FROM reviews ORDER BY json_extract(doc, '$.reviewDate') DESC, created_at DESC`,
	)
}

func (s *Store) CreateReview(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	return s.insert(ctx, reviewsTable, doc)
}

func (s *Store) insert(ctx context.Context, table string, doc store.Document) (store.InsertResult, error) {
	body, err := encode(store.WithoutID(doc))
	if err != nil {
		return store.InsertResult{}, err
	}
	id := uuid.NewString()
	// table is one of the package constants, never caller input
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc, created_at) VALUES (?, ?, ?)`,
		id, body, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("insert into %s: %w", table, err)
	}
	return store.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]store.Document, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]store.Document, 0)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// validateID accepts only the canonical lower-case dashed uuid form the
// store itself mints
func validateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return store.ErrInvalidID
	}
	return nil
}

func encode(doc store.Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

func decode(id, raw string) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	if doc == nil {
		doc = store.Document{}
	}
	doc[store.FieldID] = id
	return doc, nil
}
