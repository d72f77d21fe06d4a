package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/wanderventure/wanderventure-server/store"
)

// fakeStore keeps documents in memory. Setting err makes every call fail.
type fakeStore struct {
	mu       sync.Mutex
	rooms    []store.Document
	bookings []store.Document
	reviews  []store.Document
	nextID   int
	err      error

	lastSearch string
	lastEmail  string
}

var _ store.Store = (*fakeStore)(nil)

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) find(docs []store.Document, id string) (int, error) {
	if id == "bad" {
		return -1, store.ErrInvalidID
	}
	for i, d := range docs {
		if d[store.FieldID] == id {
			return i, nil
		}
	}
	return -1, store.ErrNotFound
}

func (f *fakeStore) ListRooms(_ context.Context, search string) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastSearch = search
	match := store.RoomMatcher(search)
	out := []store.Document{}
	for _, r := range f.rooms {
		if match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetRoom(_ context.Context, id string) (store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i, err := f.find(f.rooms, id)
	if err != nil {
		return nil, err
	}
	return f.rooms[i], nil
}

func (f *fakeStore) ListBookings(_ context.Context, email string) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastEmail = email
	out := []store.Document{}
	for _, b := range f.bookings {
		if email == "" || b[store.FieldEmail] == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, doc store.Document) (store.InsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.InsertResult{}, f.err
	}
	d := store.WithoutID(doc)
	d[store.FieldID] = f.id()
	f.bookings = append(f.bookings, d)
	return store.InsertResult{Acknowledged: true, InsertedID: d[store.FieldID]}, nil
}

func (f *fakeStore) UpdateBookingDate(_ context.Context, id string, bookingDate any) (store.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.UpdateResult{}, f.err
	}
	i, err := f.find(f.bookings, id)
	switch {
	case err == store.ErrNotFound:
		f.bookings = append(f.bookings, store.Document{store.FieldID: id, store.FieldBookingDate: bookingDate})
		return store.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	case err != nil:
		return store.UpdateResult{}, err
	}
	f.bookings[i][store.FieldBookingDate] = bookingDate
	return store.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeStore) DeleteBooking(_ context.Context, id string) (store.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.DeleteResult{}, f.err
	}
	i, err := f.find(f.bookings, id)
	switch {
	case err == store.ErrNotFound:
		return store.DeleteResult{Acknowledged: true}, nil
	case err != nil:
		return store.DeleteResult{}, err
	}
	f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
	return store.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (f *fakeStore) ListReviews(context.Context) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]store.Document{}, f.reviews...), nil
}

func (f *fakeStore) CreateReview(_ context.Context, doc store.Document) (store.InsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.InsertResult{}, f.err
	}
	d := store.WithoutID(doc)
	d[store.FieldID] = f.id()
	f.reviews = append([]store.Document{d}, f.reviews...)
	return store.InsertResult{Acknowledged: true, InsertedID: d[store.FieldID]}, nil
}

func (f *fakeStore) Ping(context.Context) error  { return f.err }
func (f *fakeStore) Close(context.Context) error { return nil }
