package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONB holds an arbitrary JSON snapshot (request bodies, query strings).
// It is stored as a json column by gorm and as a native value by mongo.
type JSONB json.RawMessage

func (JSONB) GormDataType() string { return "json" }

func (JSONB) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	case string:
		*j = JSONB(v)
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("jsonb scan: %w", err)
		}
		*j = JSONB(b)
		return nil
	}
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}

func (j JSONB) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if len(j) == 0 {
		return bson.TypeNull, nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(j, &v); err != nil {
		return 0, nil, fmt.Errorf("jsonb to bson: %w", err)
	}
	return bson.MarshalValue(v)
}

func (j *JSONB) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		*j = nil
		return nil
	}
	// Wrap the value so relaxed extended JSON renders documents as plain objects.
	doc, err := bson.Marshal(bson.D{{Key: "v", Value: bson.RawValue{Type: t, Value: data}}})
	if err != nil {
		return fmt.Errorf("bson to jsonb: %w", err)
	}
	ext, err := bson.MarshalExtJSON(bson.Raw(doc), false, false)
	if err != nil {
		return fmt.Errorf("bson to jsonb: %w", err)
	}
	var wrapped struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(ext, &wrapped); err != nil {
		return fmt.Errorf("bson to jsonb: %w", err)
	}
	*j = JSONB(wrapped.V)
	return nil
}
