package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant is a (color, size) stock bucket within a product. When a product
// carries variants, variant-aware consumers ignore the flat Stock field.
type Variant struct {
	Color string `bson:"color" json:"color"`
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SKU         string             `bson:"sku" json:"sku"`
	Name        string             `bson:"name" json:"name"`
	Price       int64              `bson:"price" json:"price"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Category    StringList         `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	Variants    []Variant          `bson:"variants,omitempty" json:"variants,omitempty"`
	InStock     bool               `bson:"-" json:"inStock"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TotalStock sums variant stock when variants exist, otherwise the flat count.
func (p Product) TotalStock() int {
	if len(p.Variants) == 0 {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// FindVariant returns the index of the variant matching color+size, or -1.
func (p Product) FindVariant(color, size string) int {
	for i, v := range p.Variants {
		if v.Color == color && v.Size == size {
			return i
		}
	}
	return -1
}
