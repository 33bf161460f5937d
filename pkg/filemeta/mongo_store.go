package filemeta

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore is the Store backed by MongoDB.
//
// The dedup invariant is enforced with a partial unique index on
// content_hash filtered to live documents, mirroring the Postgres schema.
type MongoStore struct {
	coll *mongo.Collection
}

// mongoRecord is the BSON shape of a Record.
type mongoRecord struct {
	ID             string     `bson:"_id"`
	OriginalName   string     `bson:"original_name"`
	StoredName     string     `bson:"stored_name"`
	StoragePath    string     `bson:"storage_path"`
	Size           int64      `bson:"size"`
	ContentType    string     `bson:"content_type"`
	ContentHash    string     `bson:"content_hash"`
	Category       string     `bson:"category"`
	Description    string     `bson:"description"`
	OwnerID        string     `bson:"owner_id"`
	UploadTime     time.Time  `bson:"upload_time"`
	LastAccessTime time.Time  `bson:"last_access_time"`
	DownloadCount  int64      `bson:"download_count"`
	Deleted        bool       `bson:"deleted"`
	DeleteTime     *time.Time `bson:"delete_time,omitempty"`
	ImageWidth     int        `bson:"image_width"`
	ImageHeight    int        `bson:"image_height"`
	ThumbnailPath  string     `bson:"thumbnail_path"`
}

func toMongo(r *Record) *mongoRecord {
	return &mongoRecord{
		ID: r.ID, OriginalName: r.OriginalName, StoredName: r.StoredName,
		StoragePath: r.StoragePath, Size: r.Size, ContentType: r.ContentType,
		ContentHash: r.ContentHash, Category: r.Category, Description: r.Description,
		OwnerID: r.OwnerID, UploadTime: r.UploadTime, LastAccessTime: r.LastAccessTime,
		DownloadCount: r.DownloadCount, Deleted: r.Deleted, DeleteTime: r.DeleteTime,
		ImageWidth: r.ImageWidth, ImageHeight: r.ImageHeight, ThumbnailPath: r.ThumbnailPath,
	}
}

func (m *mongoRecord) toRecord() *Record {
	return &Record{
		ID: m.ID, OriginalName: m.OriginalName, StoredName: m.StoredName,
		StoragePath: m.StoragePath, Size: m.Size, ContentType: m.ContentType,
		ContentHash: m.ContentHash, Category: m.Category, Description: m.Description,
		OwnerID: m.OwnerID, UploadTime: m.UploadTime, LastAccessTime: m.LastAccessTime,
		DownloadCount: m.DownloadCount, Deleted: m.Deleted, DeleteTime: m.DeleteTime,
		ImageWidth: m.ImageWidth, ImageHeight: m.ImageHeight, ThumbnailPath: m.ThumbnailPath,
	}
}

// NewMongoStore creates a store over the given collection and ensures the
// uniqueness indexes exist.
func NewMongoStore(ctx context.Context, coll *mongo.Collection) (*MongoStore, error) {
	if coll == nil {
		return nil, fmt.Errorf("%w: nil collection", ErrInvalidRecord)
	}

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stored_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "content_hash", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "deleted", Value: false}}),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "upload_time", Value: -1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	return &MongoStore{coll: coll}, nil
}

func (s *MongoStore) Create(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	_, err := s.coll.InsertOne(ctx, toMongo(record))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The stored name is a fresh uuid, so in practice a duplicate
			// key here is the live-hash index.
			if _, hashErr := s.GetByHash(ctx, record.ContentHash); hashErr == nil {
				return fmt.Errorf("%w: %s", ErrDuplicateHash, record.ContentHash)
			}
			return fmt.Errorf("%w: %s", ErrDuplicateStoredName, record.StoredName)
		}
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*Record, error) {
	return s.getOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetByHash(ctx context.Context, hash string) (*Record, error) {
	return s.getOne(ctx, bson.M{"content_hash": hash, "deleted": false})
}

func (s *MongoStore) GetByStoredName(ctx context.Context, name string) (*Record, error) {
	return s.getOne(ctx, bson.M{"stored_name": name})
}

func (s *MongoStore) Update(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": record.ID}, toMongo(record))
	if err != nil {
		return fmt.Errorf("update file record: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, record.ID)
	}
	return nil
}

func (s *MongoStore) UpdateAccessStats(ctx context.Context, id string, at time.Time) error {
	return s.updateOne(ctx, id, bson.M{
		"$inc": bson.M{"download_count": 1},
		"$set": bson.M{"last_access_time": at},
	})
}

func (s *MongoStore) SetImageMeta(ctx context.Context, id string, width, height int) error {
	return s.updateOne(ctx, id, bson.M{
		"$set": bson.M{"image_width": width, "image_height": height},
	})
}

func (s *MongoStore) SetThumbnail(ctx context.Context, id string, path string) error {
	return s.updateOne(ctx, id, bson.M{
		"$set": bson.M{"thumbnail_path": path},
	})
}

func (s *MongoStore) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "delete_time": at}},
	)
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) Restore(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "deleted": true},
		bson.M{"$set": bson.M{"deleted": false}, "$unset": bson.M{"delete_time": ""}},
	)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrNotDeleted, id)
	}
	return nil
}

func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*Record, error) {
	query := bson.M{"owner_id": ownerID, "deleted": false}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	return s.getMany(ctx, query, filter)
}

func (s *MongoStore) SearchByName(ctx context.Context, ownerID, query string, filter ListFilter) ([]*Record, error) {
	return s.getMany(ctx, bson.M{
		"owner_id": ownerID,
		"deleted":  false,
		"original_name": bson.M{
			"$regex":   regexp.QuoteMeta(query),
			"$options": "i",
		},
	}, filter)
}

func (s *MongoStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"owner_id": ownerID, "deleted": false})
	if err != nil {
		return 0, fmt.Errorf("count by owner: %w", err)
	}
	return n, nil
}

func (s *MongoStore) SumSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	cursor, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID, "deleted": false}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$size"}}}},
	})
	if err != nil {
		return 0, fmt.Errorf("sum size by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("decode size aggregate: %w", err)
		}
	}
	return result.Total, cursor.Err()
}

func (s *MongoStore) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	return s.getMany(ctx, bson.M{
		"deleted":     true,
		"delete_time": bson.M{"$lte": cutoff},
	}, ListFilter{})
}

func (s *MongoStore) HardDelete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("hard delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *MongoStore) getOne(ctx context.Context, query bson.M) (*Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, query).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query file record: %w", err)
	}
	return doc.toRecord(), nil
}

func (s *MongoStore) getMany(ctx context.Context, query bson.M, filter ListFilter) ([]*Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "upload_time", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Record
	for cursor.Next(ctx) {
		var doc mongoRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode file record: %w", err)
		}
		out = append(out, doc.toRecord())
	}
	return out, cursor.Err()
}

func (s *MongoStore) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update file record: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
