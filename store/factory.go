package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// NewStoresFromConfig selects the store implementation by driver name.
// "mongo" is the deployment default; "memory" runs everything in-process
// and is what the test suites and local dev mode use.
func NewStoresFromConfig(driver string, db *mongo.Database) (*Stores, error) {
	switch driver {
	case "mongo":
		if db == nil {
			return nil, fmt.Errorf("mongo store requires a connected database")
		}
		return NewMongoStores(db), nil
	case "memory":
		return NewMemoryStores(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}
