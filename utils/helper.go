package utils

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StringToObjectID converts a hex string to an ObjectID
func StringToObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// ObjectIDToString converts an ObjectID to its hex string
func ObjectIDToString(id primitive.ObjectID) string {
	return id.Hex()
}

// IsValidObjectID checks if a string is a valid ObjectID hex
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// OptionalObjectID parses an optional hex id; an empty string yields nil.
func OptionalObjectID(s string) (*primitive.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
