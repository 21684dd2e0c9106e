package store

import (
	"context"
	"errors"
	"time"

	"cloudbox/database"
	"cloudbox/errtypes"
	"cloudbox/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStores implements Stores on top of MongoDB. Uniqueness invariants
// are double-checked here and backed by the unique indexes created in
// database.EnsureIndexes.
type MongoStores struct {
	users    *mongo.Collection
	folders  *mongo.Collection
	files    *mongo.Collection
	shares   *mongo.Collection
	links    *mongo.Collection
	activity *mongo.Collection
}

// NewMongoStores creates the store set over the given database.
func NewMongoStores(db *mongo.Database) *Stores {
	m := &MongoStores{
		users:    db.Collection(database.UsersCollection),
		folders:  db.Collection(database.FoldersCollection),
		files:    db.Collection(database.FilesCollection),
		shares:   db.Collection(database.SharesCollection),
		links:    db.Collection(database.ShareLinksCollection),
		activity: db.Collection(database.ActivitiesCollection),
	}
	return &Stores{
		Users:    m,
		Folders:  m,
		Files:    m,
		Shares:   m,
		Links:    m,
		Activity: m,
	}
}

func parentFilter(field string, id *primitive.ObjectID) bson.M {
	if id == nil {
		return bson.M{field: bson.M{"$exists": false}}
	}
	return bson.M{field: *id}
}

// Users

func (m *MongoStores) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("user " + id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MongoStores) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("user " + email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MongoStores) UpsertUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := m.users.UpdateOne(ctx,
		bson.M{"subject_id": user.SubjectID},
		bson.M{
			"$set": bson.M{
				"email":        user.Email,
				"display_name": user.DisplayName,
				"is_active":    user.IsActive,
				"updated_at":   user.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"_id":        user.ID,
				"subject_id": user.SubjectID,
				"created_at": user.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Folders

func (m *MongoStores) GetFolder(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := m.folders.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("folder " + id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (m *MongoStores) FindFolderByName(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	filter := parentFilter("parent_id", parentID)
	filter["owner_id"] = ownerID
	filter["name"] = name

	var folder models.Folder
	err := m.folders.FindOne(ctx, filter).Decode(&folder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("folder " + name)
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (m *MongoStores) InsertFolder(ctx context.Context, folder *models.Folder) error {
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	_, err := m.folders.InsertOne(ctx, folder)
	if mongo.IsDuplicateKeyError(err) {
		return errtypes.AlreadyExists("folder " + folder.Name)
	}
	return err
}

func (m *MongoStores) UpdateFolder(ctx context.Context, folder *models.Folder) error {
	res, err := m.folders.ReplaceOne(ctx, bson.M{"_id": folder.ID}, folder)
	if mongo.IsDuplicateKeyError(err) {
		return errtypes.AlreadyExists("folder " + folder.Name)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errtypes.NotFound("folder " + folder.ID.Hex())
	}
	return nil
}

func (m *MongoStores) DeleteFolder(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.folders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errtypes.NotFound("folder " + id.Hex())
	}
	return nil
}

func (m *MongoStores) ListFoldersByParent(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error) {
	filter := parentFilter("parent_id", parentID)
	filter["owner_id"] = ownerID
	return m.findFolders(ctx, filter)
}

func (m *MongoStores) ListFoldersByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Folder, error) {
	return m.findFolders(ctx, bson.M{"owner_id": ownerID})
}

func (m *MongoStores) findFolders(ctx context.Context, filter bson.M) ([]models.Folder, error) {
	cursor, err := m.folders.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// Files

func (m *MongoStores) GetFile(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	err := m.files.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("file " + id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (m *MongoStores) FindFileByName(ctx context.Context, ownerID primitive.ObjectID, folderID *primitive.ObjectID, name string) (*models.File, error) {
	filter := parentFilter("folder_id", folderID)
	filter["owner_id"] = ownerID
	filter["name"] = name

	var file models.File
	err := m.files.FindOne(ctx, filter).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("file " + name)
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (m *MongoStores) InsertFile(ctx context.Context, file *models.File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	_, err := m.files.InsertOne(ctx, file)
	if mongo.IsDuplicateKeyError(err) {
		return errtypes.AlreadyExists("file " + file.Name)
	}
	return err
}

func (m *MongoStores) UpdateFile(ctx context.Context, file *models.File) error {
	res, err := m.files.ReplaceOne(ctx, bson.M{"_id": file.ID}, file)
	if mongo.IsDuplicateKeyError(err) {
		return errtypes.AlreadyExists("file " + file.Name)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errtypes.NotFound("file " + file.ID.Hex())
	}
	return nil
}

func (m *MongoStores) DeleteFile(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.files.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errtypes.NotFound("file " + id.Hex())
	}
	return nil
}

func (m *MongoStores) ListFilesByFolder(ctx context.Context, folderID primitive.ObjectID) ([]models.File, error) {
	return m.findFiles(ctx, bson.M{"folder_id": folderID})
}

func (m *MongoStores) ListFilesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.File, error) {
	return m.findFiles(ctx, bson.M{"owner_id": ownerID})
}

func (m *MongoStores) findFiles(ctx context.Context, filter bson.M) ([]models.File, error) {
	cursor, err := m.files.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Shares

func shareFilter(resource models.Resource, userID primitive.ObjectID) bson.M {
	return bson.M{
		"resource_kind": resource.Kind,
		"resource_id":   resource.ID,
		"user_id":       userID,
	}
}

func (m *MongoStores) GetShare(ctx context.Context, resource models.Resource, userID primitive.ObjectID) (*models.DirectShare, error) {
	var share models.DirectShare
	err := m.shares.FindOne(ctx, shareFilter(resource, userID)).Decode(&share)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("share on " + resource.ID.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (m *MongoStores) UpsertShare(ctx context.Context, share *models.DirectShare) error {
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	update := bson.M{
		"$set": bson.M{
			"permission": share.Permission,
			"granted_by": share.GrantedBy,
			"is_active":  share.IsActive,
			"updated_at": share.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":           share.ID,
			"resource_kind": share.ResourceKind,
			"resource_id":   share.ResourceID,
			"user_id":       share.UserID,
			"created_at":    share.CreatedAt,
		},
	}
	// expires_at is cleared, not left stale, when the new grant has none
	if share.ExpiresAt != nil {
		update["$set"].(bson.M)["expires_at"] = share.ExpiresAt
	} else {
		update["$unset"] = bson.M{"expires_at": ""}
	}

	_, err := m.shares.UpdateOne(ctx,
		shareFilter(models.Resource{Kind: share.ResourceKind, ID: share.ResourceID}, share.UserID),
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func (m *MongoStores) UpdateShare(ctx context.Context, share *models.DirectShare) error {
	res, err := m.shares.ReplaceOne(ctx, bson.M{"_id": share.ID}, share)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errtypes.NotFound("share " + share.ID.Hex())
	}
	return nil
}

func (m *MongoStores) ListSharesForResource(ctx context.Context, resource models.Resource) ([]models.DirectShare, error) {
	cursor, err := m.shares.Find(ctx, bson.M{
		"resource_kind": resource.Kind,
		"resource_id":   resource.ID,
	}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shares []models.DirectShare
	if err = cursor.All(ctx, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

func (m *MongoStores) ListSharesForUser(ctx context.Context, userID primitive.ObjectID, kind models.ResourceKind) ([]models.DirectShare, error) {
	cursor, err := m.shares.Find(ctx, bson.M{
		"user_id":       userID,
		"resource_kind": kind,
	}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shares []models.DirectShare
	if err = cursor.All(ctx, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// Links

func (m *MongoStores) GetLinkByUUID(ctx context.Context, uuid string) (*models.ShareLink, error) {
	var link models.ShareLink
	err := m.links.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errtypes.NotFound("share link " + uuid)
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (m *MongoStores) InsertLink(ctx context.Context, link *models.ShareLink) error {
	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	_, err := m.links.InsertOne(ctx, link)
	if mongo.IsDuplicateKeyError(err) {
		return errtypes.AlreadyExists("share link " + link.UUID)
	}
	return err
}

func (m *MongoStores) UpdateLink(ctx context.Context, link *models.ShareLink) error {
	res, err := m.links.ReplaceOne(ctx, bson.M{"uuid": link.UUID}, link)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errtypes.NotFound("share link " + link.UUID)
	}
	return nil
}

// ConsumeDownload puts the quota predicate in the update filter so the
// increment and the check are one statement; two racers on the last slot
// can never both match.
func (m *MongoStores) ConsumeDownload(ctx context.Context, uuid string) (*models.ShareLink, error) {
	filter := bson.M{
		"uuid":      uuid,
		"is_active": true,
		"$or": []bson.M{
			{"max_downloads": 0},
			{"$expr": bson.M{"$lt": []string{"$download_count", "$max_downloads"}}},
		},
	}

	var link models.ShareLink
	err := m.links.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"download_count": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&link)
	if err == nil {
		return &link, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No row matched: re-read once to say why.
	current, getErr := m.GetLinkByUUID(ctx, uuid)
	if getErr != nil {
		return nil, getErr
	}
	if !current.IsActive {
		return nil, errtypes.Inactive("share link " + uuid)
	}
	return nil, errtypes.QuotaExceeded("share link " + uuid)
}

// Activity

func (m *MongoStores) InsertActivity(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := m.activity.InsertOne(ctx, entry)
	return err
}

func (m *MongoStores) ListActivityForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.ActivityLog, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := m.activity.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *MongoStores) ClearFileRefs(ctx context.Context, fileID primitive.ObjectID) error {
	_, err := m.activity.UpdateMany(ctx,
		bson.M{"file_id": fileID},
		bson.M{"$unset": bson.M{"file_id": ""}},
	)
	return err
}

func (m *MongoStores) ClearFolderRefs(ctx context.Context, folderID primitive.ObjectID) error {
	_, err := m.activity.UpdateMany(ctx,
		bson.M{"folder_id": folderID},
		bson.M{"$unset": bson.M{"folder_id": ""}},
	)
	return err
}

func (m *MongoStores) ClearUserRefs(ctx context.Context, userID primitive.ObjectID) error {
	_, err := m.activity.UpdateMany(ctx,
		bson.M{"user_id": userID},
		bson.M{"$unset": bson.M{"user_id": ""}},
	)
	return err
}
