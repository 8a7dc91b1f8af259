package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug" json:"slug"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Images        []ProductImage     `bson:"images" json:"images"`
	Sizes         []ProductSize      `bson:"sizes" json:"sizes"`
	Colors        []ProductColor     `bson:"colors" json:"colors"`
	Stock         int                `bson:"stock" json:"stock"`
	SKU           string             `bson:"sku,omitempty" json:"sku,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
}

type ProductImage struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt,omitempty" json:"alt,omitempty"`
}

type ProductSize struct {
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

type ProductColor struct {
	Name string `bson:"name" json:"name"`
	Code string `bson:"code,omitempty" json:"code,omitempty"`
}

// OffersSize reports whether size can be ordered. Products without a size
// list accept any size.
func (p Product) OffersSize(size string) bool {
	if size == "" || len(p.Sizes) == 0 {
		return true
	}

	for _, s := range p.Sizes {
		if s.Size == size {
			return true
		}
	}
	return false
}

func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
