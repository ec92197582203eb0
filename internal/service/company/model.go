// Package company keeps the singleton company profile, its products and its
// image consistent across the document store and the blob store.
package company

import (
	"slices"
	"time"
)

// Category is a product category.
type Category string

// Product categories offered by the dashboard.
const (
	CategoryIndustriel  Category = "Industriel"
	CategoryPerformance Category = "Performance"
	CategoryResistant   Category = "Résistant"
	CategoryPro         Category = "Pro"
	CategoryPolyvalent  Category = "Polyvalent"
	CategoryStandard    Category = "Standard"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryIndustriel,
	CategoryPerformance,
	CategoryResistant,
	CategoryPro,
	CategoryPolyvalent,
	CategoryStandard,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Config locates the singleton profile and its products.
type Config struct {
	ProfileID          string
	ProfilesCollection string
	ProductsCollection string
}

// DefaultConfig returns the collection layout used by the dashboard.
func DefaultConfig() Config {
	return Config{
		ProfileID:          "main_company_info",
		ProfilesCollection: "infos",
		ProductsCollection: "produits",
	}
}

// SocialMedia holds optional social links. Empty strings mean absent.
type SocialMedia struct {
	Facebook  string
	Instagram string
}

// IsEmpty reports whether no link is set.
func (s *SocialMedia) IsEmpty() bool {
	return s == nil || (s.Facebook == "" && s.Instagram == "")
}

// Profile is the stored company record. Optional text fields use "" for
// absent; optional numbers and dates use nil.
type Profile struct {
	ID              string
	Address         string
	Email           string
	SocialMedia     *SocialMedia
	ImageURL        string
	Taux            *float64
	Telephones      string
	DernierMisAJour *time.Time
	LastUpdateDate  time.Time
	CreatedAt       time.Time
}

// Product is a stored product linked to the profile through InfoID.
type Product struct {
	ID          string
	Name        string
	Category    Category
	Description string
	Price       float64
	InfoID      string
}

// Company is the profile together with its products.
type Company struct {
	Profile  Profile
	Products []Product
}

// ProductSpec is a desired product. It carries no identifier because
// products are recreated on every write.
type ProductSpec struct {
	Name        string   `json:"name"        validate:"required,max=20"`
	Category    Category `json:"category"    validate:"required,category"`
	Description string   `json:"description" validate:"required,max=60"`
	Price       float64  `json:"price"       validate:"gt=0"`
}

// Snapshot is the desired state submitted by the administrator.
//
// ImageURL is the reference the form still shows. A non-empty value keeps
// the stored image; an empty value clears it unless a new image is supplied.
type Snapshot struct {
	Address         string        `json:"address"                   validate:"required"`
	Email           string        `json:"email"                     validate:"required,email"`
	Facebook        string        `json:"facebook,omitempty"        validate:"omitempty,url"`
	Instagram       string        `json:"instagram,omitempty"       validate:"omitempty,url"`
	ImageURL        string        `json:"imageUrl,omitempty"`
	Taux            *float64      `json:"taux,omitempty"            validate:"omitempty,gte=0"`
	Telephones      string        `json:"telephones,omitempty"`
	DernierMisAJour *time.Time    `json:"dernierMisAJour,omitempty"`
	Products        []ProductSpec `json:"products"                  validate:"dive"`
}

// Image is a newly supplied image.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}
