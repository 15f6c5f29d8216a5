package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelgram/internal/common"
)

const defaultOpTimeout = 10 * time.Second

// newest first, ties broken by id so the order is total
var newestFirst = bson.D{{Key: "uploadDate", Value: -1}, {Key: "_id", Value: -1}}

// AssetRepository reads and writes the images and audios collections
type AssetRepository struct {
	db        *mongo.Database
	ready     func() bool
	opTimeout time.Duration
}

func NewAssetRepository(mongoClient *MongoClient) *AssetRepository {
	return &AssetRepository{
		db:        mongoClient.Database,
		ready:     mongoClient.Ready,
		opTimeout: defaultOpTimeout,
	}
}

func (r *AssetRepository) Ready() bool {
	return r.ready != nil && r.ready()
}

func (r *AssetRepository) collection(kind common.MediaKind) *mongo.Collection {
	return r.db.Collection(kind.Collection())
}

func (r *AssetRepository) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if !r.Ready() {
		return nil, nil, fmt.Errorf("%w: metadata repository is not connected", common.ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	return ctx, cancel, nil
}

// EnsureIndexes creates the owner/date index on both collections and the
// explicit image link index on audios.
func (r *AssetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	ownerDate := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "uploadDate", Value: -1}}}
	if _, err := r.collection(common.MediaKindImage).Indexes().CreateOne(ctx, ownerDate); err != nil {
		return repoErr("create images index", err)
	}
	_, err = r.collection(common.MediaKindAudio).Indexes().CreateMany(ctx, []mongo.IndexModel{
		ownerDate,
		{Keys: bson.D{{Key: "imageId", Value: 1}}},
	})
	if err != nil {
		return repoErr("create audios indexes", err)
	}
	return nil
}

func (r *AssetRepository) Insert(ctx context.Context, asset *MediaAsset) (string, error) {
	if !asset.Kind.IsValid() {
		return "", fmt.Errorf("%w: unknown media kind %q", common.ErrValidation, asset.Kind)
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	if asset.ID.IsZero() {
		asset.ID = primitive.NewObjectID()
	}
	if asset.UploadDate.IsZero() {
		asset.UploadDate = time.Now().UTC()
	}

	if _, err := r.collection(asset.Kind).InsertOne(ctx, asset); err != nil {
		return "", repoErr("insert "+asset.Kind.String(), err)
	}
	return asset.ID.Hex(), nil
}

// FindByID returns ErrNotFound both for a missing row and a malformed id
func (r *AssetRepository) FindByID(ctx context.Context, kind common.MediaKind, id string) (*MediaAsset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var asset MediaAsset
	err = r.collection(kind).FindOne(ctx, bson.M{"_id": oid}).Decode(&asset)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, repoErr("find "+kind.String(), err)
	}
	asset.Kind = kind
	return &asset, nil
}

func (r *AssetRepository) FindByOwner(ctx context.Context, kind common.MediaKind, ownerID string) ([]*MediaAsset, error) {
	return r.find(ctx, kind, bson.M{"userId": ownerID}, options.Find().SetSort(newestFirst))
}

func (r *AssetRepository) FindByOwnerSet(ctx context.Context, kind common.MediaKind, ownerIDs []string, limit int) ([]*MediaAsset, error) {
	if len(ownerIDs) == 0 {
		return []*MediaAsset{}, nil
	}
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, kind, bson.M{"userId": bson.M{"$in": ownerIDs}}, opts)
}

// FindLinkedAudio returns the newest audio row explicitly linked to imageID,
// or nil when there is none.
func (r *AssetRepository) FindLinkedAudio(ctx context.Context, imageID string) (*MediaAsset, error) {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var asset MediaAsset
	opts := options.FindOne().SetSort(newestFirst)
	err = r.collection(common.MediaKindAudio).FindOne(ctx, bson.M{"imageId": imageID}, opts).Decode(&asset)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, repoErr("find linked audio", err)
	}
	asset.Kind = common.MediaKindAudio
	return &asset, nil
}

// FindAudioInWindow lists every audio row of ownerID uploaded within window
// of at. The caller picks the nearest, so the result is never truncated.
func (r *AssetRepository) FindAudioInWindow(ctx context.Context, ownerID string, at time.Time, window time.Duration) ([]*MediaAsset, error) {
	filter := bson.M{
		"userId": ownerID,
		"uploadDate": bson.M{
			"$gte": at.Add(-window),
			"$lte": at.Add(window),
		},
	}
	return r.find(ctx, common.MediaKindAudio, filter, audioWindowOptions())
}

func audioWindowOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "uploadDate", Value: 1}, {Key: "_id", Value: 1}})
}

func (r *AssetRepository) DeleteByID(ctx context.Context, kind common.MediaKind, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := r.collection(kind).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return repoErr("delete "+kind.String(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	return nil
}

func (r *AssetRepository) find(ctx context.Context, kind common.MediaKind, filter interface{}, opts *options.FindOptions) ([]*MediaAsset, error) {
	ctx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cursor, err := r.collection(kind).Find(ctx, filter, opts)
	if err != nil {
		return nil, repoErr("find "+kind.String(), err)
	}
	defer cursor.Close(ctx)

	assets := []*MediaAsset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, repoErr("decode "+kind.String(), err)
	}
	for _, a := range assets {
		a.Kind = kind
	}
	return assets, nil
}

func repoErr(op string, err error) error {
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: mongodb %s: %w", common.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: mongodb %s: %v", common.ErrRepository, op, err)
}
