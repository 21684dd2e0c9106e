package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the data model relies on. The unique
// compound indexes are load-bearing: sibling folder/file names per owner,
// one grant row per (resource, user), and one link row per uuid.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "subject_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		FoldersCollection: {
			{
				Keys: bson.D{
					{Key: "owner_id", Value: 1},
					{Key: "parent_id", Value: 1},
					{Key: "name", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		},
		FilesCollection: {
			{
				Keys: bson.D{
					{Key: "owner_id", Value: 1},
					{Key: "folder_id", Value: 1},
					{Key: "name", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "folder_id", Value: 1}}},
		},
		SharesCollection: {
			{
				Keys: bson.D{
					{Key: "resource_kind", Value: 1},
					{Key: "resource_id", Value: 1},
					{Key: "user_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		ShareLinksCollection: {
			{
				Keys:    bson.D{{Key: "uuid", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		ActivitiesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "file_id", Value: 1}}},
			{Keys: bson.D{{Key: "folder_id", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := GetCollection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	log.Println("Database indexes ensured")
	return nil
}
