// Package store defines the document collections behind the booking API and
// the behaviour every backend shares.
package store

import (
	"context"
	"errors"
	"regexp"
)

// Collection names, matching the original database layout
const (
	RoomsCollection    = "rooms"
	BookingsCollection = "myRooms"
	ReviewsCollection  = "reviews"
)

// Document field names the backends query on
const (
	FieldID          = "_id"
	FieldDescription = "description"
	FieldRoomSize    = "room_Size"
	FieldEmail       = "email"
	FieldBookingDate = "bookingDate"
	FieldReviewDate  = "reviewDate"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

// Document is a schemaless record; the id is exposed under "_id"
type Document map[string]any

// InsertResult acknowledges a single insert
type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

// UpdateResult acknowledges a single update or upsert
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

// DeleteResult acknowledges a single delete
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Rooms is the read-only room catalogue
type Rooms interface {
	// ListRooms returns every room, or those whose description or room size
	// matches search case-insensitively when search is non-empty.
	ListRooms(ctx context.Context, search string) ([]Document, error)
	GetRoom(ctx context.Context, id string) (Document, error)
}

// Bookings holds the rooms a guest has booked
type Bookings interface {
	// ListBookings returns all bookings, or only email's when it is non-empty.
	ListBookings(ctx context.Context, email string) ([]Document, error)
	CreateBooking(ctx context.Context, doc Document) (InsertResult, error)
	// UpdateBookingDate sets bookingDate, inserting the booking when absent.
	UpdateBookingDate(ctx context.Context, id string, bookingDate any) (UpdateResult, error)
	DeleteBooking(ctx context.Context, id string) (DeleteResult, error)
}

// Reviews holds guest reviews
type Reviews interface {
	// ListReviews returns reviews newest first by reviewDate.
	ListReviews(ctx context.Context) ([]Document, error)
	CreateReview(ctx context.Context, doc Document) (InsertResult, error)
}

// Store is everything the API needs from a backend
type Store interface {
	Rooms
	Bookings
	Reviews
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// SearchPattern turns a user search string into the case-insensitive
// expression both backends match with. Input that isn't a valid pattern is
// matched literally.
func SearchPattern(search string) string {
	if _, err := regexp.Compile(search); err != nil {
		return regexp.QuoteMeta(search)
	}
	return search
}

// RoomMatcher returns a predicate reporting whether a room document matches
// search on description or room size.
func RoomMatcher(search string) func(Document) bool {
	if search == "" {
		return func(Document) bool { return true }
	}
	re, err := regexp.Compile("(?i)" + SearchPattern(search))
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(search))
	}
	return func(doc Document) bool {
		for _, field := range []string{FieldDescription, FieldRoomSize} {
			if s, ok := doc[field].(string); ok && re.MatchString(s) {
				return true
			}
		}
		return false
	}
}

// WithoutID returns a shallow copy of doc with any client-supplied id dropped
func WithoutID(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == FieldID {
			continue
		}
		out[k] = v
	}
	return out
}
