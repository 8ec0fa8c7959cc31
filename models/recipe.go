package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Recipe struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Directions  string             `bson:"directions" json:"directions"`
	PublishDate int64              `bson:"publishDate" json:"publishDate"` // epoch milliseconds
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Ingredients []string           `bson:"ingredients" json:"ingredients"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
}

// RecipeCount is a singleton aggregate document ("all" or "published").
type RecipeCount struct {
	ID    string `bson:"_id" json:"id"`
	Count int64  `bson:"count" json:"count"`
}
