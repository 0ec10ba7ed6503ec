// Package blogstore хранит статьи блога в MongoDB, отдельно от SQLite.
package blogstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Kisangi1/The-SOL-NEW/internal/config"
	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// Store wraps the blog collection. Reads bump the view counter so the
// public site can surface popular articles.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zerolog.Logger
}

func NewStore(ctx context.Context, cfg config.MongoConfig, logger *zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("Подключение к MongoDB установлено")
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		logger: logger,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// List returns a page of blogs, newest first, plus the total count.
func (s *Store) List(ctx context.Context, page, pageSize int) ([]models.Blog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}

	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find blogs: %w", err)
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, 0, fmt.Errorf("decode blogs: %w", err)
	}
	return blogs, total, nil
}

// Get returns a single blog and increments its view counter.
func (s *Store) Get(ctx context.Context, id string) (*models.Blog, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var blog models.Blog
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &blog, nil
}

func (s *Store) Create(ctx context.Context, blog *models.Blog) error {
	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	blog.Views = 0
	blog.Likes = 0

	res, err := s.coll.InsertOne(ctx, blog)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		blog.ID = oid
	}
	return nil
}

// Update applies non-empty fields and returns the updated document.
func (s *Store) Update(ctx context.Context, id string, updates *models.Blog) (*models.Blog, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, database.ErrNotFound
	}

	set := bson.M{"updated_at": time.Now()}
	if updates.Title != "" {
		set["title"] = updates.Title
	}
	if updates.Author != "" {
		set["author"] = updates.Author
	}
	if updates.Content != "" {
		set["content"] = updates.Content
	}
	if updates.Tags != nil {
		set["tags"] = updates.Tags
	}
	if updates.ImageURL != "" {
		set["image_url"] = updates.ImageURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var blog models.Blog
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update blog: %w", err)
	}
	return &blog, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Like increments the like counter and returns the new value.
func (s *Store) Like(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, database.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var blog models.Blog
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"likes": 1}},
		opts,
	).Decode(&blog)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, database.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("like blog: %w", err)
	}
	return blog.Likes, nil
}
