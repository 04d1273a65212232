package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"auth-service/internal/domain"
	xerrors "auth-service/pkg/xerrors"
)

// AccountRepository is the credential store. It exclusively owns Account
// records; every write is a single-document operation.
type AccountRepository interface {
	Create(ctx context.Context, acct *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetByExternalOrEmail resolves a provider claim in one read. When two
	// records match (one by external reference, one by email) the external
	// match wins, preserving resolution order.
	GetByExternalOrEmail(ctx context.Context, provider, subject, email string) (*domain.Account, error)
	UpdateLogin(ctx context.Context, id string, upd domain.LoginUpdate) error
}

const accountsCollection = "accounts"

type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection(accountsCollection)}
}

// EnsureIndexes creates the uniqueness indexes the account invariants rely
// on: email globally unique, external provider+subject unique when present.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "external.provider", Value: 1}, {Key: "external.subject", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"external": bson.M{"$exists": true}},
			),
		},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, acct *domain.Account) error {
	_, err := r.coll.InsertOne(ctx, acct)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return xerrors.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acct domain.Account
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&acct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &acct, nil
}

func (r *MongoAccountRepository) GetByExternalOrEmail(ctx context.Context, provider, subject, email string) (*domain.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"external.provider": provider, "external.subject": subject},
		bson.M{"email": email},
	}}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("find account by external or email: %w", err)
	}

	var matches []domain.Account
	if err := cur.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	if len(matches) == 0 {
		return nil, xerrors.ErrUserNotFound
	}

	for i := range matches {
		if matches[i].LinkedTo(provider, subject) {
			return &matches[i], nil
		}
	}
	return &matches[0], nil
}

func (r *MongoAccountRepository) UpdateLogin(ctx context.Context, id string, upd domain.LoginUpdate) error {
	set := bson.M{
		"last_login_at": upd.LastLoginAt,
		"updated_at":    time.Now().UTC(),
	}
	if upd.External != nil {
		set["external"] = upd.External
	}
	if upd.AvatarURL != "" {
		set["avatar_url"] = upd.AvatarURL
	}
	if upd.EmailVerified != nil {
		set["is_email_verified"] = *upd.EmailVerified
	}

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update account login: %w", err)
	}
	if res.MatchedCount == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}
