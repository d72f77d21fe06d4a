package mongostore

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wanderventure/wanderventure-server/store"
)

func roomFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := bson.Regex{Pattern: store.SearchPattern(search), Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{store.FieldDescription: pattern},
			bson.M{store.FieldRoomSize: pattern},
		},
	}
}

func bookingFilter(email string) bson.M {
	if email == "" {
		return bson.M{}
	}
	return bson.M{store.FieldEmail: email}
}

func idFilter(id string) (bson.M, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}
	return bson.M{store.FieldID: oid}, nil
}

func bookingDateUpdate(bookingDate any) bson.M {
	return bson.M{"$set": bson.M{store.FieldBookingDate: bookingDate}}
}

// toDocument converts a decoded BSON document into plain JSON-friendly values
func toDocument(raw bson.M) store.Document {
	doc := make(store.Document, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	case bson.M:
		return map[string]any(toDocument(val))
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
