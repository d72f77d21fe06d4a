// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wanderventure/wanderventure-server/store"
)

// DefaultDatabase is the database holding the three collections
const DefaultDatabase = "OurRooms"

// Store persists rooms, bookings and reviews in MongoDB
type Store struct {
	client   *mongo.Client
	rooms    *mongo.Collection
	bookings *mongo.Collection
	reviews  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to uri with the stable v1 server API and verifies the
// connection with a ping.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		database = DefaultDatabase
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:   client,
		rooms:    db.Collection(store.RoomsCollection),
		bookings: db.Collection(store.BookingsCollection),
		reviews:  db.Collection(store.ReviewsCollection),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ListRooms(ctx context.Context, search string) ([]store.Document, error) {
	return findAll(ctx, s.rooms, roomFilter(search))
}

func (s *Store) GetRoom(ctx context.Context, id string) (store.Document, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	var raw bson.M
	if err := s.rooms.FindOne(ctx, filter).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find room %s: %w", id, err)
	}
	return toDocument(raw), nil
}

func (s *Store) ListBookings(ctx context.Context, email string) ([]store.Document, error) {
	return findAll(ctx, s.bookings, bookingFilter(email))
}

func (s *Store) CreateBooking(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	return insertOne(ctx, s.bookings, doc)
}

func (s *Store) UpdateBookingDate(ctx context.Context, id string, bookingDate any) (store.UpdateResult, error) {
	filter, err := idFilter(id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	res, err := s.bookings.UpdateOne(ctx, filter, bookingDateUpdate(bookingDate), options.UpdateOne().SetUpsert(true))
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("update booking %s: %w", id, err)
	}
	return store.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    normalize(res.UpsertedID),
	}, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id string) (store.DeleteResult, error) {
	filter, err := idFilter(id)
	if err != nil {
		return store.DeleteResult{}, err
	}
	res, err := s.bookings.DeleteOne(ctx, filter)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("delete booking %s: %w", id, err)
	}
	return store.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (s *Store) ListReviews(ctx context.Context) ([]store.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: store.FieldReviewDate, Value: -1}})
	cur, err := s.reviews.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	return decodeAll(ctx, cur)
}

func (s *Store) CreateReview(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	return insertOne(ctx, s.reviews, doc)
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]store.Document, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return decodeAll(ctx, cur)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]store.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	docs := make([]store.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, toDocument(r))
	}
	return docs, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc store.Document) (store.InsertResult, error) {
	res, err := coll.InsertOne(ctx, bson.M(store.WithoutID(doc)))
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return store.InsertResult{Acknowledged: true, InsertedID: normalize(res.InsertedID)}, nil
}
