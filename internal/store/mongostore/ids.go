package mongostore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents written by other platform services carry ObjectId references,
// which the driver decodes into our string ids as 24-char hex. Filters on an
// id therefore match both the string and the ObjectId form.

func idMatch(id string) interface{} {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return id
	}
	return bson.M{"$in": bson.A{id, oid}}
}

func idsMatch(ids []string) bson.M {
	vals := make(bson.A, 0, len(ids)*2)
	for _, id := range ids {
		vals = append(vals, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			vals = append(vals, oid)
		}
	}
	return bson.M{"$in": vals}
}

// withoutID encodes v as a replacement document minus _id, so replacing a
// document keeps whatever _id type it was stored with.
func withoutID(v interface{}) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode replacement: %w", err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode replacement: %w", err)
	}
	out := doc[:0]
	for _, e := range doc {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out, nil
}
