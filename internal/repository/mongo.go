package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection    = "accounts"
	postsCollection       = "posts"
	preferencesCollection = "preferences"
	analyticsCollection   = "analytics"
	countersCollection    = "counters"
)

// NewMongoRepositories wires every store onto one database.
func NewMongoRepositories(db *mongo.Database, cipher *utils.Cipher) *Repositories {
	return &Repositories{
		Accounts:    &mongoAccountRepository{coll: db.Collection(accountsCollection), cipher: cipher},
		Posts:       &mongoPostRepository{coll: db.Collection(postsCollection), counters: db.Collection(countersCollection)},
		Preferences: &mongoPreferenceRepository{coll: db.Collection(preferencesCollection)},
		Analytics:   &mongoAnalyticsRepository{coll: db.Collection(analyticsCollection)},
	}
}

// EnsureMongoIndexes creates the unique and due-query indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(accountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create accounts index: %w", err)
	}

	_, err = db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_date", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "scheduled_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create posts indexes: %w", err)
	}
	return nil
}

type mongoAccountRepository struct {
	coll   *mongo.Collection
	cipher *utils.Cipher
}

func (r *mongoAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAccountRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *mongoAccountRepository) Upsert(ctx context.Context, acc *models.Account) (bool, error) {
	id, err := newID()
	if err != nil {
		return false, err
	}

	accessToken, err := r.cipher.Encrypt(acc.AccessToken)
	if err != nil {
		return false, fmt.Errorf("encrypt access token: %w", err)
	}
	refreshToken, err := r.cipher.Encrypt(acc.RefreshToken)
	if err != nil {
		return false, fmt.Errorf("encrypt refresh token: %w", err)
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"username":             acc.Username,
			"name":                 acc.Name,
			"profile_image_url":    acc.ProfileImageURL,
			"access_token":         accessToken,
			"refresh_token":        refreshToken,
			"hashed_refresh_token": acc.HashedRefreshToken,
			"token_expiry":         acc.TokenExpiry,
			"updated_at":           now,
		},
		"$setOnInsert": bson.M{"_id": id, "created_at": now},
		"$inc":         bson.M{"credential_version": 1},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"external_id": acc.ExternalID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert account: %w", err)
	}

	stored, err := r.GetByExternalID(ctx, acc.ExternalID)
	if err != nil {
		return false, err
	}
	acc.ID = stored.ID
	acc.CredentialVersion = stored.CredentialVersion
	acc.CreatedAt = stored.CreatedAt
	acc.UpdatedAt = stored.UpdatedAt
	return res.UpsertedCount == 1, nil
}

func (r *mongoAccountRepository) ReplaceCredentials(ctx context.Context, id string, version int64, creds models.Credentials) error {
	accessToken, err := r.cipher.Encrypt(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshToken, err := r.cipher.Encrypt(creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "credential_version": version},
		bson.M{
			"$set": bson.M{
				"access_token":         accessToken,
				"refresh_token":        refreshToken,
				"hashed_refresh_token": creds.HashedRefreshToken,
				"token_expiry":         creds.TokenExpiry,
				"updated_at":           time.Now().UTC(),
			},
			"$inc": bson.M{"credential_version": 1},
		})
	if err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	if res.MatchedCount != 1 {
		return ErrCredentialConflict
	}
	return nil
}

func (r *mongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var acc models.Account
	if err := r.coll.FindOne(ctx, filter).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	var err error
	if acc.AccessToken, err = r.cipher.Decrypt(acc.AccessToken); err != nil {
		return nil, fmt.Errorf("%w: decrypt access token: %w", ErrCorruptRecord, err)
	}
	if acc.RefreshToken, err = r.cipher.Decrypt(acc.RefreshToken); err != nil {
		return nil, fmt.Errorf("%w: decrypt refresh token: %w", ErrCorruptRecord, err)
	}
	return &acc, nil
}

type mongoPostRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	id, err := newID()
	if err != nil {
		return err
	}
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := *post
	doc.ID = id
	doc.Seq = seq
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	post.ID, post.Seq, post.CreatedAt, post.UpdatedAt = id, seq, now, now
	return nil
}

func (r *mongoPostRepository) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": postsCollection},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next post sequence: %w", err)
	}
	return counter.Value, nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (r *mongoPostRepository) ListByAccountID(ctx context.Context, accountID string) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"account_id": accountID})
}

func (r *mongoPostRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	return r.find(ctx, bson.M{
		"status":         models.PostStatusPending,
		"scheduled_date": bson.M{"$lte": now},
	})
}

func (r *mongoPostRepository) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_date", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []*models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *mongoPostRepository) MarkSent(ctx context.Context, id, externalID string, at time.Time) error {
	return r.transition(ctx, id, models.PostStatusPending, ErrPostNotPending, bson.M{
		"status":      models.PostStatusSent,
		"external_id": externalID,
		"sent_at":     at,
		"updated_at":  at,
	})
}

func (r *mongoPostRepository) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	return r.transition(ctx, id, models.PostStatusPending, ErrPostNotPending, bson.M{
		"status":     models.PostStatusFailed,
		"error":      reason,
		"updated_at": at,
	})
}

func (r *mongoPostRepository) Requeue(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, id, models.PostStatusFailed, ErrPostNotFailed, bson.M{
		"status":     models.PostStatusPending,
		"error":      "",
		"updated_at": at,
	})
}

func (r *mongoPostRepository) transition(ctx context.Context, id, from string, conflict error, set bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	if res.MatchedCount != 1 {
		return conflict
	}
	return nil
}

type mongoPreferenceRepository struct {
	coll *mongo.Collection
}

func (r *mongoPreferenceRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Preference, error) {
	var pref models.Preference
	if err := r.coll.FindOne(ctx, bson.M{"_id": accountID}).Decode(&pref); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &pref, nil
}

func (r *mongoPreferenceRepository) Upsert(ctx context.Context, pref *models.Preference) error {
	if pref.PreferredPostTimes == nil {
		pref.PreferredPostTimes = []string{}
	}

	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": pref.AccountID},
		bson.M{
			"$set":         bson.M{"preferred_post_times": pref.PreferredPostTimes, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	pref.UpdatedAt = now
	return nil
}

type mongoAnalyticsRepository struct {
	coll *mongo.Collection
}

func (r *mongoAnalyticsRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Analytics, error) {
	var a models.Analytics
	if err := r.coll.FindOne(ctx, bson.M{"_id": accountID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analytics: %w", err)
	}
	return &a, nil
}

func (r *mongoAnalyticsRepository) Upsert(ctx context.Context, a *models.Analytics) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.AccountID}, a, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert analytics: %w", err)
	}
	return nil
}
