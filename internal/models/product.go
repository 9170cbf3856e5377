package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalogue entry. The photo bytes live in the photo store under PhotoKey.
type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Slug             string             `bson:"slug" json:"slug"`
	Description      string             `bson:"description" json:"description"`
	Price            float64            `bson:"price" json:"price"`
	Category         primitive.ObjectID `bson:"category" json:"category"`
	Quantity         int                `bson:"quantity" json:"quantity"`
	Shipping         bool               `bson:"shipping" json:"shipping"`
	PhotoKey         string             `bson:"photoKey,omitempty" json:"-"`
	PhotoContentType string             `bson:"photoContentType,omitempty" json:"-"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Product) HasPhoto() bool { return p.PhotoKey != "" }

// ProductView is a product with its category document populated.
// The outer Category field shadows Product.Category when encoded.
type ProductView struct {
	Product
	Category *Category `json:"category"`
}
