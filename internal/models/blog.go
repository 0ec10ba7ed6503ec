package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog lives in the document store, separate from the relational entities.
type Blog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Author    string             `bson:"author" json:"author"`
	Content   string             `bson:"content" json:"content"`
	Tags      []string           `bson:"tags" json:"tags"`
	ImageURL  string             `bson:"image_url" json:"image_url"`
	Views     int64              `bson:"views" json:"views"`
	Likes     int64              `bson:"likes" json:"likes"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
