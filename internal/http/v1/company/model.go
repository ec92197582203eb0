package company

import (
	"github.com/janisto/company-admin/internal/platform/timeutil"
)

// SocialMedia holds optional social links.
type SocialMedia struct {
	Facebook  string `json:"facebook,omitempty"  doc:"Facebook page URL"  example:"https://facebook.com/acme"`
	Instagram string `json:"instagram,omitempty" doc:"Instagram page URL" example:"https://instagram.com/acme"`
}

// Product is a stored product.
type Product struct {
	ID          string  `json:"id"          doc:"Product identifier"      example:"b3Jk2mP0"`
	Name        string  `json:"name"        doc:"Product name"            example:"Pneu X200"`
	Category    string  `json:"category"    doc:"Product category"        example:"Pro"`
	Description string  `json:"description" doc:"Short description"       example:"Pneu renforcé"`
	Price       float64 `json:"price"       doc:"Unit price"              example:"120.5"`
	InfoID      string  `json:"infoId"      doc:"Owning profile ID"       example:"main_company_info"`
}

// Company is the profile with its products.
type Company struct {
	ID              string         `json:"id"                        doc:"Fixed profile identifier"        example:"main_company_info"`
	Address         string         `json:"address"                   doc:"Postal address"                  example:"12 avenue Foch, Paris"`
	Email           string         `json:"email,omitempty"           doc:"Contact email"                   example:"contact@example.com"`
	SocialMedia     *SocialMedia   `json:"socialMedia,omitempty"     doc:"Social links"`
	ImageURL        string         `json:"imageUrl,omitempty"        doc:"Company image URL"`
	Taux            *float64       `json:"taux,omitempty"            doc:"Exchange rate"                   example:"655.957"`
	Telephones      string         `json:"telephones,omitempty"      doc:"Phone numbers, free text"        example:"+33 1 23 45 67 89"`
	DernierMisAJour *timeutil.Time `json:"dernierMisAJour,omitempty" doc:"Manually entered last update"`
	LastUpdateDate  timeutil.Time  `json:"lastUpdateDate"            doc:"Last write timestamp"`
	CreatedAt       timeutil.Time  `json:"createdAt"                 doc:"Creation timestamp"`
	Products        []Product      `json:"products"                  doc:"Products linked to the profile"`
}

// PurgeResult reports what a purge removed.
type PurgeResult struct {
	PreviousImageURL string `json:"previousImageUrl,omitempty" doc:"Image reference held before the purge"`
	ImageDeleted     bool   `json:"imageDeleted"               doc:"Whether the image object was deleted"`
}
