package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList holds a product's category names. Early catalog imports wrote
// the field as a bare string, so decoding accepts both shapes; writes always
// store an array.
type StringList []string

// Normalize trims every entry and drops blanks and duplicates, keeping the
// first occurrence's position.
func (s StringList) Normalize() StringList {
	seen := make(map[string]struct{}, len(s))
	out := make(StringList, 0, len(s))
	for _, entry := range s {
		name := strings.TrimSpace(entry)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (s *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*s = nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*s = StringList{value}.Normalize()
	case bsontype.Array:
		var values []string
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		*s = StringList(values).Normalize()
	default:
		return fmt.Errorf("cannot decode %s into StringList", t)
	}
	return nil
}

func (s StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]string(s))
}
