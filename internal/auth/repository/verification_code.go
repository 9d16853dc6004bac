package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	autherrors "atelier/internal/auth/errors"
	"atelier/pkg/config"
	mongotx "atelier/pkg/db/mongo"
	"atelier/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CodeCollectionName = "Verification_codes"

type VerificationCodeRepository interface {
	Create(ctx context.Context, code *model.VerificationCode) error
	FindLatestByEmail(ctx context.Context, email string) (*model.VerificationCode, error)
	FindByEmailAndCode(ctx context.Context, email, code string) (*model.VerificationCode, error)
	DeleteByEmail(ctx context.Context, email string) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCodeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCodeRepository(cfg *config.Config) VerificationCodeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCodeRepository{
		cfg:        cfg,
		collection: db.Collection(CodeCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCodeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCodeRepository) Create(ctx context.Context, code *model.VerificationCode) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	code.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to create verification code: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		code.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCodeRepository) FindLatestByEmail(ctx context.Context, email string) (*model.VerificationCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var code model.VerificationCode
	err := r.collection.FindOne(ctx, bson.M{"email": email}, opts).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to find verification code: %w", err)
	}

	return &code, nil
}

func (r *mongoCodeRepository) FindByEmailAndCode(ctx context.Context, email, code string) (*model.VerificationCode, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var record model.VerificationCode
	err := r.collection.FindOne(ctx, bson.M{"email": email, "code": code}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to find verification code: %w", err)
	}

	return &record, nil
}

func (r *mongoCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("failed to delete verification codes: %w", err)
	}
	return nil
}

func (r *mongoCodeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid verification code ID: %s", id)
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}

func (r *mongoCodeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
